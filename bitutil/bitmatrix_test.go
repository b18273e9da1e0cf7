package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitMatrixGetSetUnset(t *testing.T) {
	m := NewBitMatrixWithSize(33, 10)
	assert.Equal(t, 2, m.RowSize())
	m.Set(32, 5)
	m.Set(3, 5)
	assert.True(t, m.Get(32, 5))
	assert.True(t, m.Get(3, 5))
	assert.False(t, m.Get(5, 3))
	m.Unset(32, 5)
	assert.False(t, m.Get(32, 5))
}

func TestBitMatrixOutOfRangePanics(t *testing.T) {
	m := NewBitMatrixWithSize(10, 10)
	// x=10 still falls inside the first packed word.
	assert.Panics(t, func() { m.Get(10, 0) })
	assert.Panics(t, func() { m.Set(0, 10) })
	assert.Panics(t, func() { m.Flip(-1, 0) })
	assert.Panics(t, func() { NewBitMatrixWithSize(0, 4) })
}

func TestBitMatrixSetRegion(t *testing.T) {
	m := NewBitMatrixWithSize(70, 8)
	require.NoError(t, m.SetRegion(30, 2, 36, 4))
	for y := 0; y < 8; y++ {
		for x := 0; x < 70; x++ {
			want := x >= 30 && x < 66 && y >= 2 && y < 6
			assert.Equal(t, want, m.Get(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestBitMatrixSetRegionInvalid(t *testing.T) {
	m := NewBitMatrixWithSize(8, 8)
	cases := [][4]int{
		{-1, 0, 2, 2},
		{0, -1, 2, 2},
		{0, 0, 0, 2},
		{0, 0, 2, 0},
		{7, 0, 2, 2},
		{0, 7, 2, 2},
	}
	for _, c := range cases {
		assert.ErrorIs(t, m.SetRegion(c[0], c[1], c[2], c[3]), ErrInvalidRegion, "%v", c)
	}
	_, ok := m.TopLeftOnBit()
	assert.False(t, ok, "failed SetRegion must not touch the matrix")
}

func TestBitMatrixXor(t *testing.T) {
	a := NewBitMatrixWithSize(5, 5)
	b := NewBitMatrixWithSize(5, 5)
	a.Set(1, 1)
	a.Set(2, 2)
	b.Set(2, 2)
	b.Set(3, 3)
	require.NoError(t, a.Xor(b))
	assert.True(t, a.Get(1, 1))
	assert.False(t, a.Get(2, 2))
	assert.True(t, a.Get(3, 3))

	assert.ErrorIs(t, a.Xor(NewBitMatrixWithSize(5, 6)), ErrDimensionMismatch)
	assert.ErrorIs(t, a.Xor(NewBitMatrixWithSize(6, 5)), ErrDimensionMismatch)
}

func TestBitMatrixRowRoundTrip(t *testing.T) {
	m := NewBitMatrixWithSize(40, 4)
	m.Set(3, 2)
	m.Set(35, 2)
	row := m.Row(2, nil)
	assert.True(t, row.Get(3))
	assert.True(t, row.Get(35))
	assert.False(t, row.Get(4))

	reused := m.Row(1, row)
	assert.Same(t, row, reused)
	assert.Equal(t, 40, reused.NextSet(0))

	m.SetRow(0, m.Row(2, nil))
	assert.True(t, m.Get(35, 0))
}

func TestBitMatrixRotate180(t *testing.T) {
	m := NewBitMatrixWithSize(37, 3)
	m.Set(0, 0)
	m.Set(33, 1)
	m.Rotate180()
	assert.True(t, m.Get(36, 2))
	assert.True(t, m.Get(3, 1))
	assert.False(t, m.Get(0, 0))
}

func TestBitMatrixRotate90(t *testing.T) {
	m := NewBitMatrixWithSize(4, 3)
	m.Set(3, 0)
	m.Rotate90()
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 4, m.Height())
	assert.True(t, m.Get(0, 0))

	n := NewBitMatrixWithSize(4, 3)
	n.Set(3, 0)
	require.NoError(t, n.Rotate(450))
	assert.True(t, n.Equals(m))
	assert.Error(t, n.Rotate(45))
}

func TestBitMatrixEnclosingRectangle(t *testing.T) {
	m := NewBitMatrixWithSize(100, 10)
	_, ok := m.EnclosingRectangle()
	assert.False(t, ok)

	m.Set(3, 2)
	m.Set(70, 8)
	rect, ok := m.EnclosingRectangle()
	require.True(t, ok)
	assert.Equal(t, [4]int{3, 2, 68, 7}, rect)
}

func TestBitMatrixCornerBits(t *testing.T) {
	m := NewBitMatrixWithSize(64, 10)
	_, ok := m.TopLeftOnBit()
	assert.False(t, ok)
	_, ok = m.BottomRightOnBit()
	assert.False(t, ok)

	m.Set(40, 3)
	m.Set(5, 7)
	m.Set(9, 7)
	tl, ok := m.TopLeftOnBit()
	require.True(t, ok)
	assert.Equal(t, [2]int{40, 3}, tl)
	br, ok := m.BottomRightOnBit()
	require.True(t, ok)
	assert.Equal(t, [2]int{9, 7}, br)
}

func TestBitMatrixFlipAllKeepsPaddingClear(t *testing.T) {
	m := NewBitMatrixWithSize(10, 2)
	m.FlipAll()
	rect, ok := m.EnclosingRectangle()
	require.True(t, ok)
	assert.Equal(t, [4]int{0, 0, 10, 2}, rect)
}

func TestBitMatrixEqualsAndHash(t *testing.T) {
	a := NewBitMatrixWithSize(4, 4)
	b := NewBitMatrixWithSize(4, 4)
	a.Set(1, 2)
	b.Set(1, 2)
	assert.True(t, a.Equals(b))
	assert.Equal(t, a.Hash(), b.Hash())

	b.Set(3, 3)
	assert.False(t, a.Equals(b))
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.False(t, a.Equals(NewBitMatrixWithSize(4, 5)))

	c := a.Clone()
	c.Set(0, 0)
	assert.False(t, a.Get(0, 0))
}

func TestParseStringMatrix(t *testing.T) {
	m := NewBitMatrixWithSize(5, 3)
	m.Set(0, 0)
	m.Set(4, 2)
	m.Set(2, 1)
	parsed, err := ParseStringMatrix(m.String(), "X ", "  ")
	require.NoError(t, err)
	assert.True(t, parsed.Equals(m))

	_, err = ParseStringMatrix("X.\nX\n", "X", ".")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = ParseStringMatrix("X?", "X", ".")
	assert.Error(t, err)
}

func TestParseBoolMatrix(t *testing.T) {
	m := ParseBoolMatrix([][]bool{
		{true, false, false},
		{false, false, true},
	})
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.True(t, m.Get(0, 0))
	assert.True(t, m.Get(2, 1))
	assert.Equal(t, "X     \n    X \n", m.String())
}
