package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/coco-projects/qrcode/bitutil"
)

// ErrOutOfBounds is returned when a sampling point lands more than one
// pixel outside the image.
var ErrOutOfBounds = errors.New("transform: sample point outside image")

// GridSampler reads a dimensionX×dimensionY module grid out of an image.
// Implementations are passed explicitly to the detector and reader; there is
// no process-wide default to swap.
type GridSampler interface {
	// SampleGrid samples through the transform that maps the grid-space
	// quadrilateral dst onto the image-space quadrilateral src.
	SampleGrid(image *bitutil.BitMatrix, dimensionX, dimensionY int, dst, src Quad) (*bitutil.BitMatrix, error)

	// SampleGridTransform samples through a transform from grid space to
	// image space.
	SampleGridTransform(image *bitutil.BitMatrix, dimensionX, dimensionY int, t *PerspectiveTransform) (*bitutil.BitMatrix, error)
}

// DefaultGridSampler reads the pixel under the center of every module.
type DefaultGridSampler struct{}

var _ GridSampler = DefaultGridSampler{}

func (s DefaultGridSampler) SampleGrid(image *bitutil.BitMatrix, dimensionX, dimensionY int, dst, src Quad) (*bitutil.BitMatrix, error) {
	return s.SampleGridTransform(image, dimensionX, dimensionY, QuadrilateralToQuadrilateral(dst, src))
}

func (DefaultGridSampler) SampleGridTransform(image *bitutil.BitMatrix, dimensionX, dimensionY int, t *PerspectiveTransform) (*bitutil.BitMatrix, error) {
	if dimensionX < 1 || dimensionY < 1 {
		return nil, fmt.Errorf("%w: empty %dx%d grid", ErrOutOfBounds, dimensionX, dimensionY)
	}
	bits := bitutil.NewBitMatrixWithSize(dimensionX, dimensionY)
	points := make([]float64, 2*dimensionX)
	for y := 0; y < dimensionY; y++ {
		cy := float64(y) + 0.5
		for x := 0; x < dimensionX; x++ {
			points[2*x] = float64(x) + 0.5
			points[2*x+1] = cy
		}
		t.TransformPoints(points)
		if err := CheckAndNudgePoints(image, points); err != nil {
			return nil, err
		}
		for x := 0; x < dimensionX; x++ {
			px, py, ok := pixel(image, points[2*x], points[2*x+1])
			if !ok {
				return nil, fmt.Errorf("%w: module (%d, %d) maps to (%.1f, %.1f)",
					ErrOutOfBounds, x, y, points[2*x], points[2*x+1])
			}
			if image.Get(px, py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pixel returns the image pixel containing (x, y).
func pixel(image *bitutil.BitMatrix, x, y float64) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) ||
		x <= -1 || y <= -1 || x >= float64(image.Width()) || y >= float64(image.Height()) {
		return 0, 0, false
	}
	return int(x), int(y), true
}

// CheckAndNudgePoints validates transformed sample points. Finder patterns
// may sit flush against the image border, so a point that truncates to -1
// or to width/height is snapped onto the edge. Anything further out is
// ErrOutOfBounds. Only the runs of points at either end are inspected, as
// the middle of a row cannot leave the image unless an end does.
func CheckAndNudgePoints(image *bitutil.BitMatrix, points []float64) error {
	n := len(points) / 2
	for i := 0; i < n; i++ {
		nudged, err := nudge(image, points, 2*i)
		if err != nil {
			return err
		}
		if !nudged {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		nudged, err := nudge(image, points, 2*i)
		if err != nil {
			return err
		}
		if !nudged {
			break
		}
	}
	return nil
}

func nudge(image *bitutil.BitMatrix, points []float64, off int) (bool, error) {
	w, h := image.Width(), image.Height()
	fx, fy := points[off], points[off+1]
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return false, fmt.Errorf("%w: undefined sample point", ErrOutOfBounds)
	}
	x, y := truncate(fx), truncate(fy)
	if x < -1 || x > w || y < -1 || y > h {
		return false, fmt.Errorf("%w: (%.1f, %.1f) in %dx%d image", ErrOutOfBounds, fx, fy, w, h)
	}
	nudged := false
	switch x {
	case -1:
		points[off], nudged = 0, true
	case w:
		points[off], nudged = float64(w-1), true
	}
	switch y {
	case -1:
		points[off+1], nudged = 0, true
	case h:
		points[off+1], nudged = float64(h-1), true
	}
	return nudged, nil
}

// truncate converts toward zero, clamping values that do not fit an int.
func truncate(v float64) int {
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}
