package qrcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/reedsolomon"
	"github.com/coco-projects/qrcode/transform"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrNotFound, ErrNotFound},
		{ErrFormat, ErrFormat},
		{ErrChecksum, ErrChecksum},
		{fmt.Errorf("block 2: %w", reedsolomon.ErrTooManyErrors), ErrChecksum},
		{bitutil.ErrInsufficientBits, ErrFormat},
		{bitutil.ErrDimensionMismatch, ErrFormat},
		{bitutil.ErrInvalidRange, ErrFormat},
		{reedsolomon.ErrDivisionByZero, ErrFormat},
		{charset.ErrInvalidECI, ErrFormat},
		{transform.ErrOutOfBounds, ErrNotFound},
		{bitutil.ErrInvalidRegion, ErrNotFound},
		{errors.New("something else"), ErrNotFound},
	}
	for _, c := range cases {
		got := Classify(c.err)
		assert.ErrorIs(t, got, c.kind, "%v", c.err)
		assert.ErrorIs(t, got, c.err, "cause of %v lost", c.err)
		for _, other := range []error{ErrNotFound, ErrFormat, ErrChecksum} {
			if other != c.kind {
				assert.NotErrorIs(t, got, other, "%v", c.err)
			}
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	assert.NoError(t, Classify(nil))
	once := Classify(reedsolomon.ErrTooManyErrors)
	assert.Same(t, once, Classify(once))

	var de *DecodeError
	assert.ErrorAs(t, fmt.Errorf("reading: %w", once), &de)
	assert.Equal(t, ErrChecksum, de.Kind)
	assert.Equal(t, "qrcode: checksum error: reedsolomon: too many errors", de.Error())
}
