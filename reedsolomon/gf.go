// Package reedsolomon implements arithmetic over GF(2^m), polynomials over
// such fields, and Reed-Solomon encoding and decoding on top of them.
package reedsolomon

import (
	"fmt"
	"sync"
)

// GenericGF is GF(size) built from a primitive polynomial. Its tables are
// written once by the constructor and only read afterwards, so a field may
// be shared freely between goroutines.
type GenericGF struct {
	exp           []int
	log           []int
	zero          *GenericGFPoly
	one           *GenericGFPoly
	size          int
	primitive     int
	generatorBase int
}

type fieldKey struct {
	primitive, size, generatorBase int
}

var (
	fieldsMu sync.Mutex
	fields   = map[fieldKey]*GenericGF{}
)

// QRCodeField256 is GF(256) over x^8 + x^4 + x^3 + x^2 + 1 with generator
// base 0, the field used by QR Code.
var QRCodeField256 = sync.OnceValue(func() *GenericGF {
	return Field(0x011D, 256, 0)
})

// Field returns the process-wide field for the given parameters, building
// its tables on first use. size must be a power of two and primitive a
// primitive polynomial of matching degree.
func Field(primitive, size, generatorBase int) *GenericGF {
	key := fieldKey{primitive, size, generatorBase}
	fieldsMu.Lock()
	defer fieldsMu.Unlock()
	if gf, ok := fields[key]; ok {
		return gf
	}
	gf := newGenericGF(primitive, size, generatorBase)
	fields[key] = gf
	return gf
}

func newGenericGF(primitive, size, generatorBase int) *GenericGF {
	gf := &GenericGF{
		exp:           make([]int, size),
		log:           make([]int, size),
		size:          size,
		primitive:     primitive,
		generatorBase: generatorBase,
	}
	x := 1
	for i := range gf.exp {
		gf.exp[i] = x
		x <<= 1
		if x >= size {
			x = (x ^ primitive) & (size - 1)
		}
	}
	for i := 0; i < size-1; i++ {
		gf.log[gf.exp[i]] = i
	}
	gf.zero = &GenericGFPoly{field: gf, coefficients: []int{0}}
	gf.one = &GenericGFPoly{field: gf, coefficients: []int{1}}
	return gf
}

func (gf *GenericGF) Zero() *GenericGFPoly { return gf.zero }
func (gf *GenericGF) One() *GenericGFPoly  { return gf.one }

// NewPoly builds a polynomial from coefficients ordered highest degree
// first. Leading zeros are dropped.
func (gf *GenericGF) NewPoly(coefficients []int) (*GenericGFPoly, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("reedsolomon: polynomial needs at least one coefficient")
	}
	for _, c := range coefficients {
		if c < 0 || c >= gf.size {
			return nil, fmt.Errorf("reedsolomon: coefficient %d outside %s", c, gf)
		}
	}
	return newPoly(gf, coefficients), nil
}

// BuildMonomial returns coefficient·x^degree.
func (gf *GenericGF) BuildMonomial(degree, coefficient int) *GenericGFPoly {
	if degree < 0 {
		panic("reedsolomon: negative monomial degree")
	}
	if coefficient == 0 {
		return gf.zero
	}
	c := make([]int, degree+1)
	c[0] = coefficient
	return newPoly(gf, c)
}

// AddOrSubtract is field addition, which is also subtraction in
// characteristic 2.
func AddOrSubtract(a, b int) int {
	return a ^ b
}

// Exp returns the generator raised to a, for a in [0, size).
func (gf *GenericGF) Exp(a int) int {
	return gf.exp[a]
}

// Log is the discrete logarithm of a non-zero element.
func (gf *GenericGF) Log(a int) (int, error) {
	if a == 0 {
		return 0, fmt.Errorf("%w: log(0)", ErrDivisionByZero)
	}
	return gf.log[a], nil
}

// Inverse is the multiplicative inverse of a non-zero element.
func (gf *GenericGF) Inverse(a int) (int, error) {
	if a == 0 {
		return 0, fmt.Errorf("%w: inverse(0)", ErrDivisionByZero)
	}
	return gf.exp[gf.size-1-gf.log[a]], nil
}

func (gf *GenericGF) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return gf.exp[(gf.log[a]+gf.log[b])%(gf.size-1)]
}

func (gf *GenericGF) Size() int          { return gf.size }
func (gf *GenericGF) GeneratorBase() int { return gf.generatorBase }

func (gf *GenericGF) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", gf.primitive, gf.size)
}
