package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitSourceAcrossByteBoundary(t *testing.T) {
	s := NewBitSource([]byte{0xB4, 0x2F})
	require.Equal(t, 16, s.Available())

	v, err := s.ReadBits(4)
	require.NoError(t, err)
	assert.Equal(t, 0xB, v)

	v, err = s.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, 0x42, v)
	assert.Equal(t, 1, s.ByteOffset())
	assert.Equal(t, 4, s.BitOffset())

	v, err = s.ReadBits(4)
	require.NoError(t, err)
	assert.Equal(t, 0xF, v)
	assert.Equal(t, 0, s.Available())
}

func TestBitSourceWideReads(t *testing.T) {
	s := NewBitSource([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06})
	v, err := s.ReadBits(1)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = s.ReadBits(32)
	require.NoError(t, err)
	assert.Equal(t, 0x02040608, v)
	assert.Equal(t, 15, s.Available())
}

func TestBitSourceInsufficientBits(t *testing.T) {
	s := NewBitSource([]byte{0xFF})
	_, err := s.ReadBits(9)
	assert.ErrorIs(t, err, ErrInsufficientBits)
	_, err = s.ReadBits(0)
	assert.ErrorIs(t, err, ErrInsufficientBits)
	_, err = s.ReadBits(33)
	assert.ErrorIs(t, err, ErrInsufficientBits)

	// A failed read does not move the cursor.
	v, err := s.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, 0xFF, v)
}
