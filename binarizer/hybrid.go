package binarizer

import (
	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

const (
	blockSizePower   = 3
	blockSize        = 1 << blockSizePower
	minimumDimension = blockSize * 5
	minDynamicRange  = 24
)

// Hybrid thresholds each 8×8 block against the average black point of the
// surrounding 5×5 blocks, which copes with shadows and gradients. Images
// smaller than 40 pixels on a side fall back to GlobalHistogram. Rows are
// always binarized with the global method.
type Hybrid struct {
	GlobalHistogram
	matrix *bitutil.BitMatrix
}

func NewHybrid(source qrcode.LuminanceSource) *Hybrid {
	return &Hybrid{GlobalHistogram: GlobalHistogram{source: source}}
}

func (h *Hybrid) CreateBinarizer(source qrcode.LuminanceSource) qrcode.Binarizer {
	return NewHybrid(source)
}

// BlackMatrix computes the matrix once and returns the cached copy after.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.matrix != nil {
		return h.matrix, nil
	}
	width, height := h.source.Width(), h.source.Height()
	if width < minimumDimension || height < minimumDimension {
		m, err := h.GlobalHistogram.BlackMatrix()
		if err != nil {
			return nil, err
		}
		h.matrix = m
		return m, nil
	}

	g := blockGrid{
		lum:    h.source.Matrix(),
		width:  width,
		height: height,
		cols:   (width + blockSize - 1) >> blockSizePower,
		rows:   (height + blockSize - 1) >> blockSizePower,
	}
	m := bitutil.NewBitMatrixWithSize(width, height)
	g.threshold(g.blackPoints(), m)
	h.matrix = m
	return m, nil
}

// blockGrid partitions a luminance image into blockSize squares. The last
// row and column of blocks are shifted back to stay inside the image.
type blockGrid struct {
	lum           []byte
	width, height int
	cols, rows    int
}

func (g *blockGrid) origin(col, row int) (x, y int) {
	return min(col<<blockSizePower, g.width-blockSize), min(row<<blockSizePower, g.height-blockSize)
}

// blackPoints estimates a black point per block. Low contrast blocks take
// half their minimum, or the neighbours' estimate when that is higher, so
// that flat areas inside a symbol follow its surroundings.
func (g *blockGrid) blackPoints() [][]int {
	points := make([][]int, g.rows)
	for row := range points {
		points[row] = make([]int, g.cols)
		for col := range points[row] {
			x0, y0 := g.origin(col, row)
			sum, lo, hi := 0, 0xFF, 0
			for y := 0; y < blockSize; y++ {
				line := g.lum[(y0+y)*g.width+x0:][:blockSize]
				for _, l := range line {
					v := int(l)
					sum += v
					lo = min(lo, v)
					hi = max(hi, v)
				}
			}

			avg := sum >> (2 * blockSizePower)
			if hi-lo <= minDynamicRange {
				avg = lo / 2
				if row > 0 && col > 0 {
					neighbours := (points[row-1][col] + 2*points[row][col-1] + points[row-1][col-1]) / 4
					if lo < neighbours {
						avg = neighbours
					}
				}
			}
			points[row][col] = avg
		}
	}
	return points
}

func (g *blockGrid) threshold(points [][]int, m *bitutil.BitMatrix) {
	for row := 0; row < g.rows; row++ {
		cy := clamp(row, 2, g.rows-3)
		for col := 0; col < g.cols; col++ {
			cx := clamp(col, 2, g.cols-3)
			sum := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					sum += points[cy+dy][cx+dx]
				}
			}
			g.thresholdBlock(col, row, sum/25, m)
		}
	}
}

func (g *blockGrid) thresholdBlock(col, row, threshold int, m *bitutil.BitMatrix) {
	x0, y0 := g.origin(col, row)
	for y := 0; y < blockSize; y++ {
		line := g.lum[(y0+y)*g.width+x0:][:blockSize]
		for x, l := range line {
			if int(l) <= threshold {
				m.Set(x0+x, y0+y)
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
