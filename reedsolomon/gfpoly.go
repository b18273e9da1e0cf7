package reedsolomon

import "fmt"

// GenericGFPoly is a polynomial over a GenericGF, coefficients ordered from
// the highest degree down. The leading coefficient is non-zero unless the
// polynomial is zero, which is represented as [0]. Values are immutable:
// every operation returns a new polynomial.
type GenericGFPoly struct {
	field        *GenericGF
	coefficients []int
}

// newPoly trusts its caller to pass at least one in-range coefficient.
func newPoly(field *GenericGF, coefficients []int) *GenericGFPoly {
	first := 0
	for first < len(coefficients)-1 && coefficients[first] == 0 {
		first++
	}
	c := make([]int, len(coefficients)-first)
	copy(c, coefficients[first:])
	return &GenericGFPoly{field: field, coefficients: c}
}

func (p *GenericGFPoly) Field() *GenericGF { return p.field }

// Coefficients returns a copy of the coefficients, highest degree first.
func (p *GenericGFPoly) Coefficients() []int {
	c := make([]int, len(p.coefficients))
	copy(c, p.coefficients)
	return c
}

func (p *GenericGFPoly) Degree() int  { return len(p.coefficients) - 1 }
func (p *GenericGFPoly) IsZero() bool { return p.coefficients[0] == 0 }

// Coefficient returns the coefficient of x^degree.
func (p *GenericGFPoly) Coefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates the polynomial at a using Horner's rule.
func (p *GenericGFPoly) EvaluateAt(a int) int {
	switch a {
	case 0:
		return p.Coefficient(0)
	case 1:
		sum := 0
		for _, c := range p.coefficients {
			sum ^= c
		}
		return sum
	}
	result := p.coefficients[0]
	for _, c := range p.coefficients[1:] {
		result = AddOrSubtract(p.field.Multiply(a, result), c)
	}
	return result
}

func (p *GenericGFPoly) sameField(other *GenericGFPoly) error {
	if p.field != other.field {
		return fmt.Errorf("%w: %s and %s", ErrFieldMismatch, p.field, other.field)
	}
	return nil
}

func (p *GenericGFPoly) AddOrSubtract(other *GenericGFPoly) (*GenericGFPoly, error) {
	if err := p.sameField(other); err != nil {
		return nil, err
	}
	return p.add(other), nil
}

func (p *GenericGFPoly) add(other *GenericGFPoly) *GenericGFPoly {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}
	small, large := p.coefficients, other.coefficients
	if len(small) > len(large) {
		small, large = large, small
	}
	sum := make([]int, len(large))
	shift := len(large) - len(small)
	copy(sum, large[:shift])
	for i := shift; i < len(large); i++ {
		sum[i] = AddOrSubtract(small[i-shift], large[i])
	}
	return newPoly(p.field, sum)
}

func (p *GenericGFPoly) Multiply(other *GenericGFPoly) (*GenericGFPoly, error) {
	if err := p.sameField(other); err != nil {
		return nil, err
	}
	return p.mul(other), nil
}

func (p *GenericGFPoly) mul(other *GenericGFPoly) *GenericGFPoly {
	if p.IsZero() || other.IsZero() {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+len(other.coefficients)-1)
	for i, a := range p.coefficients {
		for j, b := range other.coefficients {
			product[i+j] ^= p.field.Multiply(a, b)
		}
	}
	return newPoly(p.field, product)
}

func (p *GenericGFPoly) MultiplyScalar(scalar int) *GenericGFPoly {
	switch scalar {
	case 0:
		return p.field.zero
	case 1:
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, scalar)
	}
	return newPoly(p.field, product)
}

// MultiplyByMonomial returns p·coefficient·x^degree.
func (p *GenericGFPoly) MultiplyByMonomial(degree, coefficient int) *GenericGFPoly {
	if degree < 0 {
		panic("reedsolomon: negative monomial degree")
	}
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}

// Divide returns the quotient and remainder of p / other.
func (p *GenericGFPoly) Divide(other *GenericGFPoly) (quotient, remainder *GenericGFPoly, err error) {
	if err := p.sameField(other); err != nil {
		return nil, nil, err
	}
	if other.IsZero() {
		return nil, nil, fmt.Errorf("%w: zero polynomial divisor", ErrDivisionByZero)
	}
	invLead, err := p.field.Inverse(other.Coefficient(other.Degree()))
	if err != nil {
		return nil, nil, err
	}
	quotient, remainder = p.field.zero, p
	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		diff := remainder.Degree() - other.Degree()
		scale := p.field.Multiply(remainder.Coefficient(remainder.Degree()), invLead)
		quotient = quotient.add(p.field.BuildMonomial(diff, scale))
		remainder = remainder.add(other.MultiplyByMonomial(diff, scale))
	}
	return quotient, remainder, nil
}

func (p *GenericGFPoly) String() string {
	if p.IsZero() {
		return "0"
	}
	var out []byte
	for d := p.Degree(); d >= 0; d-- {
		c := p.Coefficient(d)
		if c == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, " + "...)
		}
		if c != 1 || d == 0 {
			out = fmt.Appendf(out, "%d", c)
		}
		switch {
		case d == 1:
			out = append(out, 'x')
		case d > 1:
			out = fmt.Appendf(out, "x^%d", d)
		}
	}
	return string(out)
}
