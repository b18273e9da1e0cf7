package reedsolomon

import "fmt"

// Decoder corrects symbol errors in Reed-Solomon codewords over one field.
// It holds no per-call state and may be used concurrently.
type Decoder struct {
	field *GenericGF
}

func NewDecoder(field *GenericGF) *Decoder {
	return &Decoder{field: field}
}

// Decode repairs received in place. The last twoS symbols are error
// correction symbols; the returned count is the number of symbols changed.
// On failure received is left untouched and the error wraps
// ErrTooManyErrors.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	if twoS < 1 || twoS > len(received) {
		return 0, fmt.Errorf("%w: %d ec symbols in %d", ErrInvalidCodeword, twoS, len(received))
	}
	gf := d.field
	poly := newPoly(gf, received)
	syndromes := make([]int, twoS)
	clean := true
	for i := 0; i < twoS; i++ {
		s := poly.EvaluateAt(gf.Exp(i + gf.generatorBase))
		syndromes[twoS-1-i] = s
		if s != 0 {
			clean = false
		}
	}
	if clean {
		return 0, nil
	}

	sigma, omega, err := d.euclidean(gf.BuildMonomial(twoS, 1), newPoly(gf, syndromes), twoS)
	if err != nil {
		return 0, err
	}
	locations, err := d.errorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes, err := d.errorMagnitudes(omega, locations)
	if err != nil {
		return 0, err
	}

	positions := make([]int, len(locations))
	for i, loc := range locations {
		l, err := gf.Log(loc)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrTooManyErrors, err)
		}
		positions[i] = len(received) - 1 - l
		if positions[i] < 0 {
			return 0, fmt.Errorf("%w: error position outside codeword", ErrTooManyErrors)
		}
	}
	for i, pos := range positions {
		received[pos] = AddOrSubtract(received[pos], magnitudes[i])
	}
	return len(positions), nil
}

// euclidean runs the extended Euclidean algorithm on a = x^R and b = S(x)
// until the remainder degree drops below R/2, returning the error locator
// sigma and error evaluator omega normalised so sigma(0) = 1.
func (d *Decoder) euclidean(a, b *GenericGFPoly, R int) (sigma, omega *GenericGFPoly, err error) {
	gf := d.field
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	rLast, r := a, b
	tLast, t := gf.zero, gf.one

	for 2*r.Degree() >= R {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t
		if rLast.IsZero() {
			return nil, nil, fmt.Errorf("%w: remainder vanished early", ErrTooManyErrors)
		}
		r = rLastLast
		q := gf.zero
		invLead, err := gf.Inverse(rLast.Coefficient(rLast.Degree()))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrTooManyErrors, err)
		}
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			diff := r.Degree() - rLast.Degree()
			scale := gf.Multiply(r.Coefficient(r.Degree()), invLead)
			q = q.add(gf.BuildMonomial(diff, scale))
			r = r.add(rLast.MultiplyByMonomial(diff, scale))
		}
		t = q.mul(tLast).add(tLastLast)
		if r.Degree() >= rLast.Degree() {
			return nil, nil, fmt.Errorf("%w: division did not reduce degree", ErrTooManyErrors)
		}
	}

	atZero := t.Coefficient(0)
	if atZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma(0) is zero", ErrTooManyErrors)
	}
	inv, err := gf.Inverse(atZero)
	if err != nil {
		return nil, nil, err
	}
	return t.MultiplyScalar(inv), r.MultiplyScalar(inv), nil
}

// errorLocations finds the reciprocals of sigma's roots by trying every
// non-zero element (Chien search).
func (d *Decoder) errorLocations(sigma *GenericGFPoly) ([]int, error) {
	n := sigma.Degree()
	if n == 1 {
		return []int{sigma.Coefficient(1)}, nil
	}
	found := make([]int, 0, n)
	for i := 1; i < d.field.size && len(found) < n; i++ {
		if sigma.EvaluateAt(i) != 0 {
			continue
		}
		inv, err := d.field.Inverse(i)
		if err != nil {
			return nil, err
		}
		found = append(found, inv)
	}
	if len(found) != n {
		return nil, fmt.Errorf("%w: locator of degree %d has %d roots", ErrTooManyErrors, n, len(found))
	}
	return found, nil
}

// errorMagnitudes applies Forney's formula at each location.
func (d *Decoder) errorMagnitudes(omega *GenericGFPoly, locations []int) ([]int, error) {
	gf := d.field
	out := make([]int, len(locations))
	for i, loc := range locations {
		xiInv, err := gf.Inverse(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTooManyErrors, err)
		}
		denom := 1
		for j, other := range locations {
			if i == j {
				continue
			}
			// 1 + X_j/X_i, where adding 1 just toggles the low bit
			denom = gf.Multiply(denom, gf.Multiply(other, xiInv)^1)
		}
		invDenom, err := gf.Inverse(denom)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTooManyErrors, err)
		}
		out[i] = gf.Multiply(omega.EvaluateAt(xiInv), invDenom)
		if gf.generatorBase != 0 {
			out[i] = gf.Multiply(out[i], xiInv)
		}
	}
	return out, nil
}
