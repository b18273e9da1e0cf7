package qrcode

import (
	"log/slog"

	"github.com/coco-projects/qrcode/transform"
)

// DecodeOptions configures decoding. A nil *DecodeOptions means defaults.
type DecodeOptions struct {
	// PureBarcode hints that the image holds only an upright, unrotated
	// symbol with a quiet zone, so detection can be skipped.
	PureBarcode bool

	// TryHarder spends more time: the reader also retries with the matrix
	// rotated by 180 degrees.
	TryHarder bool

	// CharacterSet names the charset byte segments are assumed to use
	// when no ECI says otherwise. Empty means guess.
	CharacterSet string

	// AlsoInverted retries on the inverted image, for light-on-dark
	// symbols.
	AlsoInverted bool

	GridSampler transform.GridSampler
	Logger      *slog.Logger
}

// Sampler returns the configured grid sampler or the default one.
func (o *DecodeOptions) Sampler() transform.GridSampler {
	if o == nil || o.GridSampler == nil {
		return transform.DefaultGridSampler{}
	}
	return o.GridSampler
}

var discard = slog.New(slog.DiscardHandler)

// Log returns the configured logger, or one that drops everything.
func (o *DecodeOptions) Log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return discard
	}
	return o.Logger
}

func (o *DecodeOptions) Charset() string {
	if o == nil {
		return ""
	}
	return o.CharacterSet
}

// EncodeOptions configures encoding. A nil *EncodeOptions means defaults.
type EncodeOptions struct {
	// ErrorCorrection is "L", "M", "Q" or "H". Empty means L.
	ErrorCorrection string

	// CharacterSet names the charset for byte segments. Anything other
	// than ISO-8859-1 is announced with an ECI segment.
	CharacterSet string

	// QRVersion forces a version from 1 to 40. Zero picks the smallest
	// that fits.
	QRVersion int

	// MaskPattern forces a mask from 0 to 7. Nil picks the best one.
	MaskPattern *int

	// Margin is the quiet zone in modules. Nil means 4.
	Margin *int
}

const DefaultMargin = 4

func (o *EncodeOptions) QuietZone() int {
	if o == nil || o.Margin == nil {
		return DefaultMargin
	}
	return *o.Margin
}
