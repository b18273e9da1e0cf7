package qrcode

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/coco-projects/qrcode/bitutil"
)

// ImageLuminanceSource holds the luminance of a decoded image. Crops are
// views that share the underlying buffer.
type ImageLuminanceSource struct {
	data       []byte
	dataWidth  int
	dataHeight int
	left       int
	top        int
	width      int
	height     int
}

// NewImageLuminanceSource converts img to luminance with
// (306R + 601G + 117B + 0x200) >> 10 on 8-bit components. Fully transparent
// pixels count as white.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	if g, ok := img.(*image.Gray); ok {
		return NewGrayImageLuminanceSource(g)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	lum := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				lum[y*w+x] = 0xFF
				continue
			}
			lum[y*w+x] = byte((306*(r>>8) + 601*(g>>8) + 117*(bl>>8) + 0x200) >> 10)
		}
	}
	return newImageSource(lum, w, h)
}

// NewGrayImageLuminanceSource copies the pixels of img as they are.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	lum := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(lum[y*w:], img.Pix[off:off+w])
	}
	return newImageSource(lum, w, h)
}

func newImageSource(lum []byte, w, h int) *ImageLuminanceSource {
	return &ImageLuminanceSource{data: lum, dataWidth: w, dataHeight: h, width: w, height: h}
}

func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		panic(fmt.Sprintf("qrcode: row %d outside image of height %d", y, s.height))
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	off := (y+s.top)*s.dataWidth + s.left
	copy(row, s.data[off:off+s.width])
	return row
}

func (s *ImageLuminanceSource) Matrix() []byte {
	if s.left == 0 && s.top == 0 && s.width == s.dataWidth && s.height == s.dataHeight {
		return s.data
	}
	out := make([]byte, s.width*s.height)
	for y := 0; y < s.height; y++ {
		off := (y+s.top)*s.dataWidth + s.left
		copy(out[y*s.width:], s.data[off:off+s.width])
	}
	return out
}

func (s *ImageLuminanceSource) Width() int  { return s.width }
func (s *ImageLuminanceSource) Height() int { return s.height }

func (s *ImageLuminanceSource) CropSupported() bool { return true }

func (s *ImageLuminanceSource) Crop(left, top, width, height int) (LuminanceSource, error) {
	if left < 0 || top < 0 || width < 1 || height < 1 || left+width > s.width || top+height > s.height {
		return nil, fmt.Errorf("%w: crop %dx%d at (%d, %d) of %dx%d image",
			bitutil.ErrInvalidRegion, width, height, left, top, s.width, s.height)
	}
	c := *s
	c.left += left
	c.top += top
	c.width, c.height = width, height
	return &c, nil
}

func (s *ImageLuminanceSource) RotateSupported() bool { return true }

func (s *ImageLuminanceSource) RotateCounterClockwise() (LuminanceSource, error) {
	w, h := s.height, s.width
	lum := make([]byte, w*h)
	for y := 0; y < s.height; y++ {
		row := s.data[(y+s.top)*s.dataWidth+s.left:]
		for x := 0; x < s.width; x++ {
			lum[(s.width-1-x)*w+y] = row[x]
		}
	}
	return newImageSource(lum, w, h), nil
}

// RotateCounterClockwise45 resamples the image on a canvas large enough to
// hold it, filling the corners with white.
func (s *ImageLuminanceSource) RotateCounterClockwise45() (LuminanceSource, error) {
	rotated := imaging.Rotate(s.Image(), 45, color.White)
	return NewImageLuminanceSource(rotated), nil
}

func (s *ImageLuminanceSource) Invert() LuminanceSource {
	return NewInvertedLuminanceSource(s)
}

// Image returns the luminance as a greyscale image.
func (s *ImageLuminanceSource) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.Matrix())
	return img
}

func (s *ImageLuminanceSource) String() string { return LuminanceString(s) }

// BitMatrixToImage renders set bits black and clear bits white, one pixel
// per bit.
func BitMatrixToImage(m *bitutil.BitMatrix) *image.Gray {
	w, h := m.Width(), m.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0xFF)
			if m.Get(x, y) {
				v = 0
			}
			img.Pix[y*img.Stride+x] = v
		}
	}
	return img
}
