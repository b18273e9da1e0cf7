package transform

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-6

var unitSquare = Quad{0, 0, 1, 0, 1, 1, 0, 1}

func assertMaps(t *testing.T, pt *PerspectiveTransform, srcX, srcY, dstX, dstY float64) {
	t.Helper()
	p := []float64{srcX, srcY}
	pt.TransformPoints(p)
	assert.InDelta(t, dstX, p[0], epsilon, "x of (%v, %v)", srcX, srcY)
	assert.InDelta(t, dstY, p[1], epsilon, "y of (%v, %v)", srcX, srcY)
}

func TestSquareToQuadrilateral(t *testing.T) {
	q := Quad{2, 3, 10, 4, 16, 15, 4, 9}
	pt := SquareToQuadrilateral(q)
	assertMaps(t, pt, 0, 0, 2, 3)
	assertMaps(t, pt, 1, 0, 10, 4)
	assertMaps(t, pt, 1, 1, 16, 15)
	assertMaps(t, pt, 0, 1, 4, 9)
}

func TestSquareToQuadrilateralAffine(t *testing.T) {
	pt := SquareToQuadrilateral(Quad{1, 1, 5, 2, 6, 6, 2, 5})
	c := pt.Coefficients()
	assert.Zero(t, c[6])
	assert.Zero(t, c[7])
	assert.Equal(t, 1.0, c[8])
	assertMaps(t, pt, 0.5, 0.5, 3.5, 3.5)
}

func TestQuadrilateralToQuadrilateral(t *testing.T) {
	from := Quad{3.5, 3.5, 17.5, 3.5, 14.5, 14.5, 3.5, 17.5}
	to := Quad{10, 20, 110, 25, 95, 105, 12, 120}
	pt := QuadrilateralToQuadrilateral(from, to)
	for i := 0; i < 8; i += 2 {
		assertMaps(t, pt, from[i], from[i+1], to[i], to[i+1])
	}
}

func TestTransformPointsZeroDenominator(t *testing.T) {
	pt := NewPerspectiveTransform(1, 0, 0, 0, 1, 0, 1, 0, 0)
	points := []float64{0, 7, 2, 4, 9}
	assert.NotPanics(t, func() { pt.TransformPoints(points) })
	assert.Equal(t, []float64{0, 7, 1, 2, 9}, points)

	xs, ys := []float64{0}, []float64{3}
	pt.TransformPointsXY(xs, ys)
	assert.Equal(t, []float64{0}, xs)
	assert.Equal(t, []float64{3}, ys)
}

func TestTransformIdentityProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	jitter := gen.Float64Range(-25, 25)

	properties.Property("quadrilateralToSquare undoes squareToQuadrilateral", prop.ForAll(
		func(j0, j1, j2, j3, j4, j5, j6, j7 float64) bool {
			q := Quad{j0, j1, 100 + j2, j3, 100 + j4, 100 + j5, j6, 100 + j7}
			round := QuadrilateralToSquare(q).Times(SquareToQuadrilateral(q))
			points := append([]float64(nil), unitSquare[:]...)
			round.TransformPoints(points)
			for i, v := range points {
				if d := v - unitSquare[i]; d > epsilon || d < -epsilon {
					return false
				}
			}
			return true
		},
		jitter, jitter, jitter, jitter, jitter, jitter, jitter, jitter,
	))

	properties.TestingRun(t)
}
