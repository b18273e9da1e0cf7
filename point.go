package qrcode

import (
	"fmt"
	"math"
)

// ResultPoint is a location of interest in image coordinates, such as a
// finder pattern center.
type ResultPoint struct {
	X, Y float64
}

func (p ResultPoint) Equals(o ResultPoint) bool {
	return p.X == o.X && p.Y == o.Y
}

func (p ResultPoint) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

func Distance(a, b ResultPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// CrossProductZ is the z component of (c-b)×(a-b).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (c.X-b.X)*(a.Y-b.Y) - (c.Y-b.Y)*(a.X-b.X)
}

// OrderBestPatterns orders three finder pattern centers as A, B, C where B
// is the corner pattern (the one opposite the longest side) and the winding
// A→B→C is fixed, so that for an upright symbol A is bottom-left, B
// top-left and C top-right. Any rotation of the symbol keeps that
// assignment relative to the symbol itself.
func OrderBestPatterns(patterns [3]ResultPoint) [3]ResultPoint {
	d01 := Distance(patterns[0], patterns[1])
	d12 := Distance(patterns[1], patterns[2])
	d02 := Distance(patterns[0], patterns[2])

	var a, b, c ResultPoint
	switch {
	case d12 >= d01 && d12 >= d02:
		b, a, c = patterns[0], patterns[1], patterns[2]
	case d02 >= d12 && d02 >= d01:
		b, a, c = patterns[1], patterns[0], patterns[2]
	default:
		b, a, c = patterns[2], patterns[0], patterns[1]
	}
	if CrossProductZ(a, b, c) < 0 {
		a, c = c, a
	}
	return [3]ResultPoint{a, b, c}
}
