// Package detector locates a QR Code in a binarized image and samples its
// module grid.
package detector

import (
	"fmt"
	"math"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/decoder"
	"github.com/coco-projects/qrcode/internal"
	"github.com/coco-projects/qrcode/transform"
)

// Detector finds a symbol in one image.
type Detector struct {
	image *bitutil.BitMatrix
}

func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image}
}

func (d *Detector) Image() *bitutil.BitMatrix { return d.image }

// Detect finds the three finder patterns and samples the symbol.
func (d *Detector) Detect(opts *qrcode.DecodeOptions) (*internal.DetectorResult, error) {
	search := &finderSearch{image: d.image}
	info, err := search.find(opts != nil && opts.TryHarder, opts != nil && opts.PureBarcode)
	if err != nil {
		return nil, err
	}
	return d.ProcessFinderPatternInfo(info, opts)
}

// ProcessFinderPatternInfo samples the symbol framed by three known finder
// patterns.
func (d *Detector) ProcessFinderPatternInfo(info *FinderPatternInfo, opts *qrcode.DecodeOptions) (*internal.DetectorResult, error) {
	log := opts.Log()
	tl, tr, bl := info.TopLeft, info.TopRight, info.BottomLeft

	moduleSize := d.calculateModuleSize(tl, tr, bl)
	if moduleSize < 1 {
		return nil, fmt.Errorf("%w: module size %.2f", qrcode.ErrNotFound, moduleSize)
	}
	dimension, err := computeDimension(tl.Point(), tr.Point(), bl.Point(), moduleSize)
	if err != nil {
		return nil, err
	}
	version, err := decoder.ProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, err
	}

	var align *AlignmentPattern
	if len(version.AlignmentPatternCenters) > 0 {
		brX := tr.X - tl.X + bl.X
		brY := tr.Y - tl.Y + bl.Y
		// The alignment center sits three modules in from the corner.
		correction := 1 - 3/float64(version.Dimension()-7)
		estX := int(tl.X + correction*(brX-tl.X))
		estY := int(tl.Y + correction*(brY-tl.Y))
		for factor := 4; factor <= 16; factor <<= 1 {
			if p, err := d.findAlignmentInRegion(moduleSize, estX, estY, float64(factor)); err == nil {
				align = &p
				break
			}
		}
		if align == nil {
			log.Debug("no alignment pattern, using the finder parallelogram", "version", version.Number)
		}
	}

	xform := createTransform(tl, tr, bl, align, dimension)
	bits, err := opts.Sampler().SampleGridTransform(d.image, dimension, dimension, xform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", qrcode.ErrNotFound, err)
	}

	points := []qrcode.ResultPoint{bl.Point(), tl.Point(), tr.Point()}
	if align != nil {
		points = append(points, align.Point())
	}
	log.Debug("symbol located",
		"dimension", dimension,
		"module_size", moduleSize,
		"top_left", tl.Point().String())
	return internal.NewDetectorResult(bits, points), nil
}

// createTransform maps module centers onto the image: finder centers sit
// 3.5 modules in from their corners, and the alignment center three
// modules further in than the bottom-right corner would be.
func createTransform(tl, tr, bl FinderPattern, align *AlignmentPattern, dimension int) *transform.PerspectiveTransform {
	far := float64(dimension) - 3.5
	brX, brY := tr.X-tl.X+bl.X, tr.Y-tl.Y+bl.Y
	srcBR := far
	if align != nil {
		brX, brY = align.X, align.Y
		srcBR = far - 3
	}
	return transform.QuadrilateralToQuadrilateral(
		transform.Quad{3.5, 3.5, far, 3.5, srcBR, srcBR, 3.5, far},
		transform.Quad{tl.X, tl.Y, tr.X, tr.Y, brX, brY, bl.X, bl.Y},
	)
}

// computeDimension rounds the finder spacing to a module count and snaps
// it to the nearest valid symbol size.
func computeDimension(tl, tr, bl qrcode.ResultPoint, moduleSize float64) (int, error) {
	tltr := int(math.Round(qrcode.Distance(tl, tr) / moduleSize))
	tlbl := int(math.Round(qrcode.Distance(tl, bl) / moduleSize))
	dimension := (tltr+tlbl)/2 + 7
	switch dimension & 3 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, fmt.Errorf("%w: implausible dimension %d", qrcode.ErrNotFound, dimension)
	}
	return dimension, nil
}

func (d *Detector) calculateModuleSize(tl, tr, bl FinderPattern) float64 {
	return (d.moduleSizeOneWay(tl, tr) + d.moduleSizeOneWay(tl, bl)) / 2
}

// moduleSizeOneWay measures the finder pattern along the line joining two
// patterns, from both ends.
func (d *Detector) moduleSizeOneWay(p, other FinderPattern) float64 {
	est1 := d.runBothWays(int(p.X), int(p.Y), int(other.X), int(other.Y))
	est2 := d.runBothWays(int(other.X), int(other.Y), int(p.X), int(p.Y))
	switch {
	case math.IsNaN(est1):
		return est2 / 7
	case math.IsNaN(est2):
		return est1 / 7
	}
	return (est1 + est2) / 14
}

// runBothWays measures the dark-light-dark run from the center of a finder
// towards (toX, toY) and the same distance the opposite way, clipped to
// the image.
func (d *Detector) runBothWays(fromX, fromY, toX, toY int) float64 {
	w, h := d.image.Width(), d.image.Height()
	result := d.blackWhiteBlackRun(fromX, fromY, toX, toY)

	scale := 1.0
	otherX := fromX - (toX - fromX)
	if otherX < 0 {
		scale = float64(fromX) / float64(fromX-otherX)
		otherX = 0
	} else if otherX >= w {
		scale = float64(w-1-fromX) / float64(otherX-fromX)
		otherX = w - 1
	}
	otherY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherY < 0 {
		scale = float64(fromY) / float64(fromY-otherY)
		otherY = 0
	} else if otherY >= h {
		scale = float64(h-1-fromY) / float64(otherY-fromY)
		otherY = h - 1
	}
	otherX = int(float64(fromX) + float64(otherX-fromX)*scale)

	// The center pixel is counted twice.
	return result + d.blackWhiteBlackRun(fromX, fromY, otherX, otherY) - 1
}

// blackWhiteBlackRun walks a Bresenham line and returns the distance to
// the start of the second dark run, or NaN if the line ends first.
func (d *Detector) blackWhiteBlackRun(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}
	dx, dy := abs(toX-fromX), abs(toY-fromY)
	e := -dx / 2
	xstep, ystep := 1, 1
	if fromX > toX {
		xstep = -1
	}
	if fromY > toY {
		ystep = -1
	}

	state := 0
	xLimit := toX + xstep
	for x, y := fromX, fromY; x != xLimit; x += xstep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}
		// Light pixels end state 1; dark pixels end states 0 and 2.
		if (state == 1) == d.image.Get(realX, realY) {
			if state == 2 {
				return math.Hypot(float64(x-fromX), float64(y-fromY))
			}
			state++
		}
		e += dy
		if e > 0 {
			if y == toY {
				break
			}
			y += ystep
			e -= dx
		}
	}
	if state == 2 {
		return math.Hypot(float64(toX+xstep-fromX), float64(toY-fromY))
	}
	return math.NaN()
}

func (d *Detector) findAlignmentInRegion(moduleSize float64, estX, estY int, factor float64) (AlignmentPattern, error) {
	allowance := int(factor * moduleSize)
	left := max(0, estX-allowance)
	right := min(d.image.Width()-1, estX+allowance)
	top := max(0, estY-allowance)
	bottom := min(d.image.Height()-1, estY+allowance)
	if float64(right-left) < 3*moduleSize || float64(bottom-top) < 3*moduleSize {
		return AlignmentPattern{}, fmt.Errorf("%w: alignment window too small", qrcode.ErrNotFound)
	}
	s := &alignmentSearch{
		image:      d.image,
		startX:     left,
		startY:     top,
		width:      right - left,
		height:     bottom - top,
		moduleSize: moduleSize,
	}
	return s.find()
}
