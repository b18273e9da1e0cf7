package reedsolomon

import (
	"fmt"
	"sync"
)

// Encoder computes Reed-Solomon error correction symbols. Generator
// polynomials are cached per degree; the cache is guarded so an Encoder can
// be shared.
type Encoder struct {
	field *GenericGF

	mu         sync.Mutex
	generators []*GenericGFPoly
}

func NewEncoder(field *GenericGF) *Encoder {
	return &Encoder{field: field, generators: []*GenericGFPoly{field.one}}
}

// generator returns prod_{i<degree} (x - a^(i+base)).
func (e *Encoder) generator(degree int) *GenericGFPoly {
	e.mu.Lock()
	defer e.mu.Unlock()
	for d := len(e.generators); d <= degree; d++ {
		last := e.generators[d-1]
		factor := newPoly(e.field, []int{1, e.field.Exp(d - 1 + e.field.generatorBase)})
		e.generators = append(e.generators, last.mul(factor))
	}
	return e.generators[degree]
}

// Encode fills the last ecBytes entries of codeword with error correction
// symbols computed over the entries before them.
func (e *Encoder) Encode(codeword []int, ecBytes int) error {
	if ecBytes < 1 {
		return fmt.Errorf("%w: no error correction symbols requested", ErrInvalidCodeword)
	}
	dataBytes := len(codeword) - ecBytes
	if dataBytes < 1 {
		return fmt.Errorf("%w: no room for data in %d symbols", ErrInvalidCodeword, len(codeword))
	}
	info := newPoly(e.field, codeword[:dataBytes]).MultiplyByMonomial(ecBytes, 1)
	_, rem, err := info.Divide(e.generator(ecBytes))
	if err != nil {
		return err
	}
	coeffs := rem.coefficients
	pad := ecBytes - len(coeffs)
	clear(codeword[dataBytes : dataBytes+pad])
	copy(codeword[dataBytes+pad:], coeffs)
	return nil
}
