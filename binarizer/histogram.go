// Package binarizer turns luminance into black and white module images.
package binarizer

import (
	"fmt"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// histogram counts luminance values in luminanceBuckets bins.
type histogram [luminanceBuckets]int

func (h *histogram) add(l byte) { h[l>>luminanceShift]++ }

// blackPoint picks the valley between the two tallest, well separated
// peaks. A histogram without two such peaks has too little contrast to
// hold a symbol.
func (h *histogram) blackPoint() (int, error) {
	tallest, tallestCount := 0, 0
	for i, c := range h {
		if c > tallestCount {
			tallest, tallestCount = i, c
		}
	}

	// The second peak favours buckets far from the first.
	second, secondScore := 0, 0
	for i, c := range h {
		d := i - tallest
		if score := c * d * d; score > secondScore {
			second, secondScore = i, score
		}
	}

	if secondScore == 0 {
		return 0, fmt.Errorf("%w: single luminance peak at %d", qrcode.ErrNotFound, tallest)
	}
	lo, hi := min(tallest, second), max(tallest, second)
	if hi-lo <= luminanceBuckets/16 {
		return 0, fmt.Errorf("%w: luminance peaks %d and %d too close", qrcode.ErrNotFound, lo, hi)
	}

	valley, valleyScore := hi-1, -1
	for i := hi - 1; i > lo; i-- {
		fromLo := i - lo
		score := fromLo * fromLo * (hi - i) * (tallestCount - h[i])
		if score > valleyScore {
			valley, valleyScore = i, score
		}
	}
	return valley << luminanceShift, nil
}

// GlobalHistogram thresholds the whole image at one black point taken from
// a histogram of its central band. It is fast but struggles with uneven
// lighting; Hybrid is the better default.
type GlobalHistogram struct {
	source qrcode.LuminanceSource
	row    []byte
}

func NewGlobalHistogram(source qrcode.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

func (g *GlobalHistogram) LuminanceSource() qrcode.LuminanceSource { return g.source }

func (g *GlobalHistogram) CreateBinarizer(source qrcode.LuminanceSource) qrcode.Binarizer {
	return NewGlobalHistogram(source)
}

func (g *GlobalHistogram) Width() int  { return g.source.Width() }
func (g *GlobalHistogram) Height() int { return g.source.Height() }

// BlackRow thresholds one row against its own histogram after a small
// sharpening filter.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	width := g.source.Width()
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}

	g.row = g.source.Row(y, g.row)
	lum := g.row[:width]
	var h histogram
	for _, l := range lum {
		h.add(l)
	}
	black, err := h.blackPoint()
	if err != nil {
		return nil, err
	}

	if width < 3 {
		for x, l := range lum {
			if int(l) < black {
				row.Set(x)
			}
		}
		return row, nil
	}
	for x := 1; x < width-1; x++ {
		if (4*int(lum[x])-int(lum[x-1])-int(lum[x+1]))/2 < black {
			row.Set(x)
		}
	}
	return row, nil
}

// BlackMatrix samples four rows through the middle three fifths of the
// image for the histogram.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	width, height := g.source.Width(), g.source.Height()

	var h histogram
	for i := 1; i < 5; i++ {
		g.row = g.source.Row(height*i/5, g.row)
		for x := width / 5; x < width*4/5; x++ {
			h.add(g.row[x])
		}
	}
	black, err := h.blackPoint()
	if err != nil {
		return nil, err
	}

	m := bitutil.NewBitMatrixWithSize(width, height)
	lum := g.source.Matrix()
	for y := 0; y < height; y++ {
		for x, l := range lum[y*width : (y+1)*width] {
			if int(l) < black {
				m.Set(x, y)
			}
		}
	}
	return m, nil
}
