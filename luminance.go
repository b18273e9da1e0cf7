package qrcode

import (
	"strings"

	"github.com/coco-projects/qrcode/bitutil"
)

// LuminanceSource provides greyscale luminance values for an image, one
// byte per pixel with 0 black and 255 white.
type LuminanceSource interface {
	// Row returns row y. If row is non-nil and large enough it is reused.
	Row(y int, row []byte) []byte

	// Matrix returns the whole image in row-major order. Callers must not
	// modify it.
	Matrix() []byte

	Width() int
	Height() int

	CropSupported() bool

	// Crop returns a view of the given rectangle, or ErrUnsupported.
	Crop(left, top, width, height int) (LuminanceSource, error)

	RotateSupported() bool

	// RotateCounterClockwise returns the image turned 90 degrees
	// counterclockwise, or ErrUnsupported.
	RotateCounterClockwise() (LuminanceSource, error)

	// RotateCounterClockwise45 returns the image turned 45 degrees
	// counterclockwise, or ErrUnsupported.
	RotateCounterClockwise45() (LuminanceSource, error)

	// Invert returns a source with every luminance value inverted.
	Invert() LuminanceSource
}

// Binarizer converts luminance data to black and white.
type Binarizer interface {
	// BlackRow returns a row of black/white values, set meaning black.
	BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error)

	// BlackMatrix returns the whole image as black/white values.
	BlackMatrix() (*bitutil.BitMatrix, error)

	LuminanceSource() LuminanceSource

	// CreateBinarizer returns a binarizer of the same kind over source.
	CreateBinarizer(source LuminanceSource) Binarizer

	Width() int
	Height() int
}

// LuminanceString renders src as text, one character per pixel from
// darkest to lightest as '#', '+', '.' and ' '.
func LuminanceString(src LuminanceSource) string {
	w, h := src.Width(), src.Height()
	var sb strings.Builder
	sb.Grow(h * (w + 1))
	var row []byte
	for y := 0; y < h; y++ {
		row = src.Row(y, row)
		for x := 0; x < w; x++ {
			switch l := row[x]; {
			case l < 0x40:
				sb.WriteByte('#')
			case l < 0x80:
				sb.WriteByte('+')
			case l < 0xC0:
				sb.WriteByte('.')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// InvertedLuminanceSource wraps another source and reports 255-l for every
// luminance l.
type InvertedLuminanceSource struct {
	delegate LuminanceSource
}

func NewInvertedLuminanceSource(delegate LuminanceSource) *InvertedLuminanceSource {
	return &InvertedLuminanceSource{delegate: delegate}
}

func (s *InvertedLuminanceSource) Row(y int, row []byte) []byte {
	row = s.delegate.Row(y, row)
	for i := 0; i < s.Width(); i++ {
		row[i] = 255 - row[i]
	}
	return row
}

func (s *InvertedLuminanceSource) Matrix() []byte {
	src := s.delegate.Matrix()
	out := make([]byte, len(src))
	for i, l := range src {
		out[i] = 255 - l
	}
	return out
}

func (s *InvertedLuminanceSource) Width() int  { return s.delegate.Width() }
func (s *InvertedLuminanceSource) Height() int { return s.delegate.Height() }

func (s *InvertedLuminanceSource) CropSupported() bool { return s.delegate.CropSupported() }

func (s *InvertedLuminanceSource) Crop(left, top, width, height int) (LuminanceSource, error) {
	c, err := s.delegate.Crop(left, top, width, height)
	if err != nil {
		return nil, err
	}
	return NewInvertedLuminanceSource(c), nil
}

func (s *InvertedLuminanceSource) RotateSupported() bool { return s.delegate.RotateSupported() }

func (s *InvertedLuminanceSource) RotateCounterClockwise() (LuminanceSource, error) {
	r, err := s.delegate.RotateCounterClockwise()
	if err != nil {
		return nil, err
	}
	return NewInvertedLuminanceSource(r), nil
}

func (s *InvertedLuminanceSource) RotateCounterClockwise45() (LuminanceSource, error) {
	r, err := s.delegate.RotateCounterClockwise45()
	if err != nil {
		return nil, err
	}
	return NewInvertedLuminanceSource(r), nil
}

// Invert unwraps back to the original source.
func (s *InvertedLuminanceSource) Invert() LuminanceSource { return s.delegate }

func (s *InvertedLuminanceSource) String() string { return LuminanceString(s) }
