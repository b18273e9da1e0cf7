package encoder

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

// MaxImageSize caps the side of images produced by Options.Image.
const MaxImageSize = 1024

// RenderResult scales the symbol by the largest whole multiple that fits
// width×height (after the quiet zone) and centers it.
func RenderResult(code *QRCode, width, height, quietZone int) *bitutil.BitMatrix {
	input := code.Matrix
	qrWidth := input.Width() + 2*quietZone
	qrHeight := input.Height() + 2*quietZone
	outWidth := max(width, qrWidth)
	outHeight := max(height, qrHeight)
	multiple := min(outWidth/qrWidth, outHeight/qrHeight)

	left := (outWidth - input.Width()*multiple) / 2
	top := (outHeight - input.Height()*multiple) / 2
	out := bitutil.NewBitMatrixWithSize(outWidth, outHeight)
	for y := 0; y < input.Height(); y++ {
		for x := 0; x < input.Width(); x++ {
			if input.Get(x, y) == 1 {
				// The region always fits by construction.
				_ = out.SetRegion(left+x*multiple, top+y*multiple, multiple, multiple)
			}
		}
	}
	return out
}

// Options drives image output. Size is pixels per module and Margin the
// quiet zone in modules.
type Options struct {
	Size            int
	Margin          int
	ErrorCorrection string
	CharacterSet    string
	Format          imaging.Format
	JPEGQuality     int
}

// DefaultOptions returns 3 pixels per module, a 4 module margin, level L
// and PNG output.
func DefaultOptions() Options {
	return Options{
		Size:            3,
		Margin:          qrcode.DefaultMargin,
		ErrorCorrection: "L",
		Format:          imaging.PNG,
		JPEGQuality:     85,
	}
}

// ParseFormat maps "png", "jpg", "jpeg" or "bmp" to an image format.
func ParseFormat(name string) (imaging.Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return imaging.PNG, nil
	case "jpg", "jpeg":
		return imaging.JPEG, nil
	case "bmp":
		return imaging.BMP, nil
	}
	return 0, fmt.Errorf("%w: image format %q", qrcode.ErrUnsupported, name)
}

// PixelSize is the module size actually used for a symbol of dimension
// dim, shrunk so the image stays within MaxImageSize.
func (o Options) PixelSize(dim int) int {
	frame := dim + 2*max(o.Margin, 0)
	return max(1, min(o.Size, MaxImageSize/frame))
}

// Image encodes content and renders it black on white.
func (o Options) Image(content string) (image.Image, *QRCode, error) {
	code, err := Encode(content, &qrcode.EncodeOptions{
		ErrorCorrection: o.ErrorCorrection,
		CharacterSet:    o.CharacterSet,
	})
	if err != nil {
		return nil, nil, err
	}
	return o.Render(code), code, nil
}

// Render draws an already encoded symbol.
func (o Options) Render(code *QRCode) image.Image {
	margin := max(o.Margin, 0)
	frame := qrcode.BitMatrixToImage(RenderResult(code, 0, 0, margin))
	px := o.PixelSize(code.Matrix.Width())
	if px == 1 {
		return frame
	}
	b := frame.Bounds()
	return imaging.Resize(frame, b.Dx()*px, b.Dy()*px, imaging.NearestNeighbor)
}

// Write encodes content and writes the image to w in o.Format.
func (o Options) Write(w io.Writer, content string) error {
	img, _, err := o.Image(content)
	if err != nil {
		return err
	}
	var encOpts []imaging.EncodeOption
	if o.Format == imaging.JPEG && o.JPEGQuality > 0 {
		encOpts = append(encOpts, imaging.JPEGQuality(o.JPEGQuality))
	}
	if err := imaging.Encode(w, img, o.Format, encOpts...); err != nil {
		return fmt.Errorf("encoder: write %s: %w", o.Format, err)
	}
	return nil
}
