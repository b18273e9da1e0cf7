package bitutil

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strings"
)

// BitMatrix is a width×height grid of bits. x is the column and y the row,
// with the origin at the top-left. Each row occupies rowSize uint32 words;
// bit x of a row lives in word x>>5 at position x&31.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix returns a cleared square matrix.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize returns a cleared matrix. Dimensions below one are a
// programming error and panic.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("bitutil: matrix dimensions must be positive, got %dx%d", width, height))
	}
	rowSize := (width + wordBits - 1) / wordBits
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// ParseBoolMatrix builds a matrix from rows of booleans, true meaning set.
func ParseBoolMatrix(image [][]bool) *BitMatrix {
	m := NewBitMatrixWithSize(len(image[0]), len(image))
	for y, row := range image {
		for x, on := range row {
			if on {
				m.Set(x, y)
			}
		}
	}
	return m
}

// ParseStringMatrix parses the output of StringWithChars back into a matrix.
func ParseStringMatrix(repr, setStr, unsetStr string) (*BitMatrix, error) {
	var cells []bool
	rowLen := -1
	rows := 0
	rowStart := 0
	endRow := func() error {
		if len(cells) == rowStart {
			return nil
		}
		if rowLen == -1 {
			rowLen = len(cells) - rowStart
		} else if len(cells)-rowStart != rowLen {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrDimensionMismatch, rows, len(cells)-rowStart, rowLen)
		}
		rowStart = len(cells)
		rows++
		return nil
	}
	for pos := 0; pos < len(repr); {
		switch {
		case repr[pos] == '\n' || repr[pos] == '\r':
			if err := endRow(); err != nil {
				return nil, err
			}
			pos++
		case strings.HasPrefix(repr[pos:], setStr):
			cells = append(cells, true)
			pos += len(setStr)
		case strings.HasPrefix(repr[pos:], unsetStr):
			cells = append(cells, false)
			pos += len(unsetStr)
		default:
			return nil, fmt.Errorf("bitutil: illegal character %q at offset %d", repr[pos], pos)
		}
	}
	if err := endRow(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidRegion)
	}
	m := NewBitMatrixWithSize(rowLen, rows)
	for i, on := range cells {
		if on {
			m.Set(i%rowLen, i/rowLen)
		}
	}
	return m, nil
}

// offset panics for coordinates outside the matrix, so padding bits at the
// end of a row are never read or written by accident.
func (m *BitMatrix) offset(x, y int) int {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		panic(fmt.Sprintf("bitutil: (%d, %d) outside %dx%d matrix", x, y, m.width, m.height))
	}
	return y*m.rowSize + x>>5
}

func (m *BitMatrix) Get(x, y int) bool {
	return m.data[m.offset(x, y)]>>uint(x&31)&1 != 0
}

func (m *BitMatrix) Set(x, y int) {
	m.data[m.offset(x, y)] |= 1 << uint(x&31)
}

func (m *BitMatrix) Unset(x, y int) {
	m.data[m.offset(x, y)] &^= 1 << uint(x&31)
}

func (m *BitMatrix) Flip(x, y int) {
	m.data[m.offset(x, y)] ^= 1 << uint(x&31)
}

// FlipAll inverts every bit. Padding past width stays clear.
func (m *BitMatrix) FlipAll() {
	for i := range m.data {
		m.data[i] = ^m.data[i]
	}
	if tail := m.width & 31; tail != 0 {
		mask := uint32(1)<<uint(tail) - 1
		for y := 0; y < m.height; y++ {
			m.data[(y+1)*m.rowSize-1] &= mask
		}
	}
}

func (m *BitMatrix) Clear() {
	clear(m.data)
}

// Xor flips every bit of m that is set in mask.
func (m *BitMatrix) Xor(mask *BitMatrix) error {
	if m.width != mask.width || m.height != mask.height || m.rowSize != mask.rowSize {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, m.width, m.height, mask.width, mask.height)
	}
	for i := range m.data {
		m.data[i] ^= mask.data[i]
	}
	return nil
}

// SetRegion sets every bit of the width×height rectangle at (left, top).
func (m *BitMatrix) SetRegion(left, top, width, height int) error {
	if left < 0 || top < 0 || width < 1 || height < 1 ||
		left+width > m.width || top+height > m.height {
		return fmt.Errorf("%w: %dx%d at (%d, %d) in %dx%d matrix",
			ErrInvalidRegion, width, height, left, top, m.width, m.height)
	}
	right := left + width - 1
	for y := top; y < top+height; y++ {
		base := y * m.rowSize
		for w := left >> 5; w <= right>>5; w++ {
			lo, hi := 0, 31
			if w == left>>5 {
				lo = left & 31
			}
			if w == right>>5 {
				hi = right & 31
			}
			m.data[base+w] |= rangeMask(lo, hi)
		}
	}
	return nil
}

// Row copies row y into row, allocating a new BitArray when row is nil or
// narrower than the matrix.
func (m *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < m.width {
		row = NewBitArray(m.width)
	} else {
		row.Clear()
	}
	base := y * m.rowSize
	for w := 0; w < m.rowSize; w++ {
		row.SetBulk(w*wordBits, m.data[base+w])
	}
	return row
}

// SetRow overwrites row y with the leading words of row.
func (m *BitMatrix) SetRow(y int, row *BitArray) {
	copy(m.data[y*m.rowSize:(y+1)*m.rowSize], row.Words())
}

// Rotate turns the matrix counterclockwise by a multiple of 90 degrees.
func (m *BitMatrix) Rotate(degrees int) error {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
	case 90:
		m.Rotate90()
	case 180:
		m.Rotate180()
	case 270:
		m.Rotate90()
		m.Rotate180()
	default:
		return fmt.Errorf("bitutil: rotation of %d degrees is not a multiple of 90", degrees)
	}
	return nil
}

// Rotate180 reverses the row order and the bit order within each row.
func (m *BitMatrix) Rotate180() {
	top := NewBitArray(m.width)
	bottom := NewBitArray(m.width)
	for i := 0; i < (m.height+1)/2; i++ {
		j := m.height - 1 - i
		top = m.Row(i, top)
		bottom = m.Row(j, bottom)
		top.Reverse()
		bottom.Reverse()
		m.SetRow(i, bottom)
		m.SetRow(j, top)
	}
}

// Rotate90 turns the matrix 90 degrees counterclockwise.
func (m *BitMatrix) Rotate90() {
	w, h := m.height, m.width
	rowSize := (w + wordBits - 1) / wordBits
	data := make([]uint32, rowSize*h)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				data[(h-1-x)*rowSize+y>>5] |= 1 << uint(y&31)
			}
		}
	}
	m.width, m.height, m.rowSize, m.data = w, h, rowSize, data
}

// EnclosingRectangle returns left, top, width and height of the smallest
// rectangle holding every set bit. ok is false when no bit is set.
func (m *BitMatrix) EnclosingRectangle() (rect [4]int, ok bool) {
	left, top := m.width, m.height
	right, bottom := -1, -1
	for y := 0; y < m.height; y++ {
		for w := 0; w < m.rowSize; w++ {
			word := m.data[y*m.rowSize+w]
			if word == 0 {
				continue
			}
			top = min(top, y)
			bottom = max(bottom, y)
			left = min(left, w*wordBits+bits.TrailingZeros32(word))
			right = max(right, w*wordBits+31-bits.LeadingZeros32(word))
		}
	}
	if right < left || bottom < top {
		return rect, false
	}
	return [4]int{left, top, right - left + 1, bottom - top + 1}, true
}

// TopLeftOnBit returns the first set bit in row-major order.
func (m *BitMatrix) TopLeftOnBit() (point [2]int, ok bool) {
	i := 0
	for i < len(m.data) && m.data[i] == 0 {
		i++
	}
	if i == len(m.data) {
		return point, false
	}
	x := (i%m.rowSize)*wordBits + bits.TrailingZeros32(m.data[i])
	return [2]int{x, i / m.rowSize}, true
}

// BottomRightOnBit returns the last set bit in row-major order.
func (m *BitMatrix) BottomRightOnBit() (point [2]int, ok bool) {
	i := len(m.data) - 1
	for i >= 0 && m.data[i] == 0 {
		i--
	}
	if i < 0 {
		return point, false
	}
	x := (i%m.rowSize)*wordBits + 31 - bits.LeadingZeros32(m.data[i])
	return [2]int{x, i / m.rowSize}, true
}

func (m *BitMatrix) Width() int   { return m.width }
func (m *BitMatrix) Height() int  { return m.height }
func (m *BitMatrix) RowSize() int { return m.rowSize }

func (m *BitMatrix) Clone() *BitMatrix {
	data := make([]uint32, len(m.data))
	copy(data, m.data)
	return &BitMatrix{width: m.width, height: m.height, rowSize: m.rowSize, data: data}
}

// Equals compares shape and content.
func (m *BitMatrix) Equals(other *BitMatrix) bool {
	if other == nil || m.width != other.width || m.height != other.height || m.rowSize != other.rowSize {
		return false
	}
	for i, w := range m.data {
		if w != other.data[i] {
			return false
		}
	}
	return true
}

// Hash is consistent with Equals.
func (m *BitMatrix) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	put := func(v uint32) {
		buf[0], buf[1], buf[2], buf[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		h.Write(buf[:])
	}
	put(uint32(m.width))
	put(uint32(m.height))
	put(uint32(m.rowSize))
	for _, w := range m.data {
		put(w)
	}
	return h.Sum64()
}

// String renders set modules as "X " and clear modules as two spaces.
func (m *BitMatrix) String() string {
	return m.StringWithChars("X ", "  ")
}

func (m *BitMatrix) StringWithChars(setStr, unsetStr string) string {
	var sb strings.Builder
	sb.Grow(m.height * (m.width*len(setStr) + 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				sb.WriteString(setStr)
			} else {
				sb.WriteString(unsetStr)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
