package qrcode

import (
	"errors"

	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/reedsolomon"
)

// The public decode failure kinds. Every error returned by a decode entry
// point satisfies errors.Is for exactly one of ErrNotFound, ErrFormat and
// ErrChecksum.
var (
	// ErrNotFound means no symbol could be located or sampled.
	ErrNotFound = errors.New("qrcode: symbol not found")

	// ErrFormat means a symbol was sampled but its structure (format or
	// version information, mode indicators, segment contents) is invalid.
	ErrFormat = errors.New("qrcode: format error")

	// ErrChecksum means error correction could not repair the codewords.
	ErrChecksum = errors.New("qrcode: checksum error")

	// ErrWriter means contents could not be encoded.
	ErrWriter = errors.New("qrcode: writer error")

	// ErrUnsupported is returned by luminance sources that cannot crop or
	// rotate.
	ErrUnsupported = errors.New("qrcode: operation not supported")
)

// DecodeError pairs a public failure kind with the error that caused it.
type DecodeError struct {
	Kind error
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Classify maps err onto one public failure kind, keeping the original
// reachable through errors.Is and errors.As. Classify(nil) is nil and an
// already classified error is returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Kind: KindOf(err), Err: err}
}

// KindOf returns the public failure kind err belongs to. Errors it does
// not recognise count as ErrNotFound.
func KindOf(err error) error {
	switch {
	case errors.Is(err, ErrChecksum),
		errors.Is(err, reedsolomon.ErrTooManyErrors):
		return ErrChecksum
	case errors.Is(err, ErrFormat),
		errors.Is(err, bitutil.ErrInsufficientBits),
		errors.Is(err, bitutil.ErrDimensionMismatch),
		errors.Is(err, bitutil.ErrInvalidRange),
		errors.Is(err, reedsolomon.ErrDivisionByZero),
		errors.Is(err, reedsolomon.ErrInvalidCodeword),
		errors.Is(err, charset.ErrInvalidECI):
		return ErrFormat
	}
	return ErrNotFound
}
