package qr

import (
	"fmt"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/encoder"
	"github.com/coco-projects/qrcode/metrics"
)

// Writer renders QR Codes as bit matrices, set bits being dark.
type Writer struct {
	recorder *metrics.Recorder
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WithRecorder(rec *metrics.Recorder) *Writer {
	w.recorder = rec
	return w
}

// Encode renders contents at least width×height pixels, with the quiet
// zone from opts (four modules by default).
func (w *Writer) Encode(contents string, width, height int, opts *qrcode.EncodeOptions) (*bitutil.BitMatrix, error) {
	m, err := w.encode(contents, width, height, opts)
	w.recorder.ObserveEncode(err)
	return m, err
}

func (w *Writer) encode(contents string, width, height int, opts *qrcode.EncodeOptions) (*bitutil.BitMatrix, error) {
	if contents == "" {
		return nil, fmt.Errorf("%w: empty contents", qrcode.ErrWriter)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: requested dimensions are too small: %dx%d", qrcode.ErrWriter, width, height)
	}
	quietZone := opts.QuietZone()
	if quietZone < 0 {
		return nil, fmt.Errorf("%w: negative margin %d", qrcode.ErrWriter, quietZone)
	}
	code, err := encoder.Encode(contents, opts)
	if err != nil {
		return nil, err
	}
	return encoder.RenderResult(code, width, height, quietZone), nil
}
