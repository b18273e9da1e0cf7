package binarizer

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrcode "github.com/coco-projects/qrcode"
)

// blocks draws 10×10 pixel squares, dark where (col+row) is even, over a
// background that brightens from left to right.
func blocks(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			light := 160 + 80*x/w
			if (x/10+y/10)%2 == 0 {
				light = 20 + 20*x/w
			}
			img.Pix[y*img.Stride+x] = uint8(light)
		}
	}
	return img
}

func TestHybridFollowsGradient(t *testing.T) {
	src := qrcode.NewGrayImageLuminanceSource(blocks(80, 60))
	m, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	for y := 0; y < 60; y += 7 {
		for x := 0; x < 80; x += 7 {
			assert.Equal(t, (x/10+y/10)%2 == 0, m.Get(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestHybridCachesMatrix(t *testing.T) {
	h := NewHybrid(qrcode.NewGrayImageLuminanceSource(blocks(48, 48)))
	a, err := h.BlackMatrix()
	require.NoError(t, err)
	b, err := h.BlackMatrix()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestGlobalHistogramSmallImage(t *testing.T) {
	src := qrcode.NewGrayImageLuminanceSource(blocks(30, 30))
	m, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	assert.True(t, m.Get(2, 2))
	assert.False(t, m.Get(12, 2))
}

func TestGlobalHistogramFlatImageNotFound(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	g := NewGlobalHistogram(qrcode.NewGrayImageLuminanceSource(img))
	_, err := g.BlackMatrix()
	assert.ErrorIs(t, err, qrcode.ErrNotFound)
	_, err = g.BlackRow(3, nil)
	assert.ErrorIs(t, err, qrcode.ErrNotFound)
}

func TestHistogramBlackPoint(t *testing.T) {
	var h histogram
	h[4] = 100
	_, err := h.blackPoint()
	assert.ErrorIs(t, err, qrcode.ErrNotFound, "one bucket")

	h[5] = 80
	_, err = h.blackPoint()
	assert.ErrorIs(t, err, qrcode.ErrNotFound, "neighbouring peaks")

	h[28] = 90
	bp, err := h.blackPoint()
	require.NoError(t, err)
	assert.Greater(t, bp, 5<<luminanceShift)
	assert.Less(t, bp, 28<<luminanceShift)
}

func TestGlobalHistogramBlackRow(t *testing.T) {
	g := NewGlobalHistogram(qrcode.NewGrayImageLuminanceSource(blocks(60, 20)))
	row, err := g.BlackRow(5, nil)
	require.NoError(t, err)
	assert.True(t, row.Get(5))
	assert.False(t, row.Get(15))
	assert.True(t, row.Get(25))
}

func TestCreateBinarizerKeepsKind(t *testing.T) {
	src := qrcode.NewGrayImageLuminanceSource(blocks(48, 48))
	_, ok := NewHybrid(src).CreateBinarizer(src.Invert()).(*Hybrid)
	assert.True(t, ok)
	_, ok = NewGlobalHistogram(src).CreateBinarizer(src).(*GlobalHistogram)
	assert.True(t, ok)

	bm := qrcode.NewBinaryBitmap(NewHybrid(src))
	inv, err := bm.Inverted().BlackMatrix()
	require.NoError(t, err)
	norm, err := bm.BlackMatrix()
	require.NoError(t, err)
	assert.NotEqual(t, norm.Get(2, 2), inv.Get(2, 2))
}
