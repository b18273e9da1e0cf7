package qrcode

import "github.com/coco-projects/qrcode/bitutil"

// BinaryBitmap is the black/white view of an image that readers consume.
// The black matrix is computed once and cached.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

func (b *BinaryBitmap) Width() int  { return b.binarizer.Width() }
func (b *BinaryBitmap) Height() int { return b.binarizer.Height() }

func (b *BinaryBitmap) Binarizer() Binarizer { return b.binarizer }

func (b *BinaryBitmap) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return b.binarizer.BlackRow(y, row)
}

// BlackMatrix returns the cached matrix. Callers must not modify it.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}

func (b *BinaryBitmap) CropSupported() bool {
	return b.binarizer.LuminanceSource().CropSupported()
}

func (b *BinaryBitmap) Crop(left, top, width, height int) (*BinaryBitmap, error) {
	src, err := b.binarizer.LuminanceSource().Crop(left, top, width, height)
	if err != nil {
		return nil, err
	}
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(src)), nil
}

func (b *BinaryBitmap) RotateSupported() bool {
	return b.binarizer.LuminanceSource().RotateSupported()
}

func (b *BinaryBitmap) RotateCounterClockwise() (*BinaryBitmap, error) {
	src, err := b.binarizer.LuminanceSource().RotateCounterClockwise()
	if err != nil {
		return nil, err
	}
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(src)), nil
}

func (b *BinaryBitmap) RotateCounterClockwise45() (*BinaryBitmap, error) {
	src, err := b.binarizer.LuminanceSource().RotateCounterClockwise45()
	if err != nil {
		return nil, err
	}
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(src)), nil
}

// Inverted returns a bitmap over the inverted luminance, binarized the same
// way.
func (b *BinaryBitmap) Inverted() *BinaryBitmap {
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(b.binarizer.LuminanceSource().Invert()))
}

func (b *BinaryBitmap) String() string {
	m, err := b.BlackMatrix()
	if err != nil {
		return ""
	}
	return m.String()
}
