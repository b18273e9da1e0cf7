// Package transform maps between an ideal module grid and its distorted
// position in an image, and samples a BitMatrix through that mapping.
package transform

// Quad lists the corners of a quadrilateral as x0, y0, x1, y1, x2, y2, x3,
// y3. For the unit square the corners are (0,0), (1,0), (1,1), (0,1).
type Quad [8]float64

// PerspectiveTransform is an immutable 3x3 projective matrix. A point
// (x, y) maps to ((a11·x + a21·y + a31) / w, (a12·x + a22·y + a32) / w)
// with w = a13·x + a23·y + a33.
type PerspectiveTransform struct {
	a11, a21, a31 float64
	a12, a22, a32 float64
	a13, a23, a33 float64
}

// NewPerspectiveTransform takes coefficients in the order a11, a21, a31,
// a12, a22, a32, a13, a23, a33.
func NewPerspectiveTransform(a11, a21, a31, a12, a22, a32, a13, a23, a33 float64) *PerspectiveTransform {
	return &PerspectiveTransform{
		a11: a11, a21: a21, a31: a31,
		a12: a12, a22: a22, a32: a32,
		a13: a13, a23: a23, a33: a33,
	}
}

// Coefficients returns the matrix in constructor order.
func (t *PerspectiveTransform) Coefficients() [9]float64 {
	return [9]float64{t.a11, t.a21, t.a31, t.a12, t.a22, t.a32, t.a13, t.a23, t.a33}
}

// QuadrilateralToQuadrilateral maps the corners of from onto the matching
// corners of to.
func QuadrilateralToQuadrilateral(from, to Quad) *PerspectiveTransform {
	return SquareToQuadrilateral(to).Times(QuadrilateralToSquare(from))
}

// SquareToQuadrilateral maps the unit square onto q. When q is a
// parallelogram the result is affine.
func SquareToQuadrilateral(q Quad) *PerspectiveTransform {
	x0, y0, x1, y1, x2, y2, x3, y3 := q[0], q[1], q[2], q[3], q[4], q[5], q[6], q[7]
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		return NewPerspectiveTransform(
			x1-x0, x2-x1, x0,
			y1-y0, y2-y1, y0,
			0, 0, 1)
	}
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return NewPerspectiveTransform(
		x1-x0+a13*x1, x3-x0+a23*x3, x0,
		y1-y0+a13*y1, y3-y0+a23*y3, y0,
		a13, a23, 1)
}

// QuadrilateralToSquare is the inverse of SquareToQuadrilateral, up to
// scale.
func QuadrilateralToSquare(q Quad) *PerspectiveTransform {
	return SquareToQuadrilateral(q).Adjoint()
}

// Adjoint returns the transposed cofactor matrix, which inverts t up to a
// scale factor that projective mapping ignores.
func (t *PerspectiveTransform) Adjoint() *PerspectiveTransform {
	return NewPerspectiveTransform(
		t.a22*t.a33-t.a23*t.a32, t.a23*t.a31-t.a21*t.a33, t.a21*t.a32-t.a22*t.a31,
		t.a13*t.a32-t.a12*t.a33, t.a11*t.a33-t.a13*t.a31, t.a12*t.a31-t.a11*t.a32,
		t.a12*t.a23-t.a13*t.a22, t.a13*t.a21-t.a11*t.a23, t.a11*t.a22-t.a12*t.a21)
}

// Times returns t·o, which applies o first.
func (t *PerspectiveTransform) Times(o *PerspectiveTransform) *PerspectiveTransform {
	return NewPerspectiveTransform(
		t.a11*o.a11+t.a21*o.a12+t.a31*o.a13,
		t.a11*o.a21+t.a21*o.a22+t.a31*o.a23,
		t.a11*o.a31+t.a21*o.a32+t.a31*o.a33,
		t.a12*o.a11+t.a22*o.a12+t.a32*o.a13,
		t.a12*o.a21+t.a22*o.a22+t.a32*o.a23,
		t.a12*o.a31+t.a22*o.a32+t.a32*o.a33,
		t.a13*o.a11+t.a23*o.a12+t.a33*o.a13,
		t.a13*o.a21+t.a23*o.a22+t.a33*o.a23,
		t.a13*o.a31+t.a23*o.a32+t.a33*o.a33)
}

// TransformPoints maps interleaved x, y pairs in place. A pair whose
// homogeneous denominator is zero has no image and is left as it was. A
// trailing unpaired value is ignored.
func (t *PerspectiveTransform) TransformPoints(points []float64) {
	for i := 0; i+1 < len(points); i += 2 {
		points[i], points[i+1] = t.apply(points[i], points[i+1])
	}
}

// TransformPointsXY is TransformPoints over separate coordinate slices.
func (t *PerspectiveTransform) TransformPointsXY(xs, ys []float64) {
	for i := range min(len(xs), len(ys)) {
		xs[i], ys[i] = t.apply(xs[i], ys[i])
	}
}

func (t *PerspectiveTransform) apply(x, y float64) (float64, float64) {
	w := t.a13*x + t.a23*y + t.a33
	if w == 0 {
		return x, y
	}
	return (t.a11*x + t.a21*y + t.a31) / w, (t.a12*x + t.a22*y + t.a32) / w
}
