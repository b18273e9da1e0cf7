package qrcode

import (
	"fmt"

	"github.com/coco-projects/qrcode/bitutil"
)

// ThumbnailScaleFactor is the subsampling step of RenderThumbnail.
const ThumbnailScaleFactor = 2

// PlanarYUVLuminanceSource reads the Y plane of a planar YUV frame, as
// delivered by most camera drivers, optionally cropped.
type PlanarYUVLuminanceSource struct {
	yuv        []byte
	dataWidth  int
	dataHeight int
	left       int
	top        int
	width      int
	height     int
}

// NewPlanarYUVLuminanceSource wraps yuv, whose leading dataWidth×dataHeight
// bytes are the Y plane. With reverseHorizontal the crop region is
// mirrored in place.
func NewPlanarYUVLuminanceSource(yuv []byte, dataWidth, dataHeight, left, top, width, height int, reverseHorizontal bool) (*PlanarYUVLuminanceSource, error) {
	if width < 1 || height < 1 || left < 0 || top < 0 || left+width > dataWidth || top+height > dataHeight {
		return nil, fmt.Errorf("%w: crop %dx%d at (%d, %d) of %dx%d frame",
			bitutil.ErrInvalidRegion, width, height, left, top, dataWidth, dataHeight)
	}
	if len(yuv) < dataWidth*dataHeight {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d luminance plane",
			bitutil.ErrDimensionMismatch, len(yuv), dataWidth, dataHeight)
	}
	s := &PlanarYUVLuminanceSource{
		yuv:        yuv,
		dataWidth:  dataWidth,
		dataHeight: dataHeight,
		left:       left,
		top:        top,
		width:      width,
		height:     height,
	}
	if reverseHorizontal {
		s.reverseHorizontal()
	}
	return s, nil
}

func (s *PlanarYUVLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		panic(fmt.Sprintf("qrcode: row %d outside frame of height %d", y, s.height))
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	off := (y+s.top)*s.dataWidth + s.left
	copy(row, s.yuv[off:off+s.width])
	return row
}

func (s *PlanarYUVLuminanceSource) Matrix() []byte {
	if s.width == s.dataWidth && s.height == s.dataHeight {
		return s.yuv[:s.width*s.height]
	}
	out := make([]byte, s.width*s.height)
	for y := 0; y < s.height; y++ {
		off := (y+s.top)*s.dataWidth + s.left
		copy(out[y*s.width:], s.yuv[off:off+s.width])
	}
	return out
}

func (s *PlanarYUVLuminanceSource) Width() int  { return s.width }
func (s *PlanarYUVLuminanceSource) Height() int { return s.height }

func (s *PlanarYUVLuminanceSource) CropSupported() bool { return true }

func (s *PlanarYUVLuminanceSource) Crop(left, top, width, height int) (LuminanceSource, error) {
	return NewPlanarYUVLuminanceSource(s.yuv, s.dataWidth, s.dataHeight,
		s.left+left, s.top+top, width, height, false)
}

func (s *PlanarYUVLuminanceSource) RotateSupported() bool { return false }

func (s *PlanarYUVLuminanceSource) RotateCounterClockwise() (LuminanceSource, error) {
	return nil, fmt.Errorf("%w: planar YUV rotation", ErrUnsupported)
}

func (s *PlanarYUVLuminanceSource) RotateCounterClockwise45() (LuminanceSource, error) {
	return nil, fmt.Errorf("%w: planar YUV rotation", ErrUnsupported)
}

func (s *PlanarYUVLuminanceSource) Invert() LuminanceSource {
	return NewInvertedLuminanceSource(s)
}

// RenderThumbnail returns every ThumbnailScaleFactor-th pixel of the crop
// as opaque ARGB greys.
func (s *PlanarYUVLuminanceSource) RenderThumbnail() []uint32 {
	w, h := s.ThumbnailWidth(), s.ThumbnailHeight()
	pixels := make([]uint32, w*h)
	in := s.top*s.dataWidth + s.left
	for y := 0; y < h; y++ {
		out := y * w
		for x := 0; x < w; x++ {
			grey := uint32(s.yuv[in+x*ThumbnailScaleFactor])
			pixels[out+x] = 0xFF000000 | grey*0x00010101
		}
		in += s.dataWidth * ThumbnailScaleFactor
	}
	return pixels
}

func (s *PlanarYUVLuminanceSource) ThumbnailWidth() int  { return s.width / ThumbnailScaleFactor }
func (s *PlanarYUVLuminanceSource) ThumbnailHeight() int { return s.height / ThumbnailScaleFactor }

func (s *PlanarYUVLuminanceSource) reverseHorizontal() {
	for y := 0; y < s.height; y++ {
		row := s.yuv[(y+s.top)*s.dataWidth+s.left:][:s.width]
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}

func (s *PlanarYUVLuminanceSource) String() string { return LuminanceString(s) }
