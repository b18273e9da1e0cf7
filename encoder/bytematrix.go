package encoder

import (
	"strings"

	"github.com/coco-projects/qrcode/bitutil"
)

// empty marks a ByteMatrix cell that has not been written yet.
const empty int8 = -1

// ByteMatrix is the symbol under construction: each cell is 0 (light),
// 1 (dark) or empty.
type ByteMatrix struct {
	cells         []int8
	width, height int
}

func NewByteMatrix(width, height int) *ByteMatrix {
	m := &ByteMatrix{cells: make([]int8, width*height), width: width, height: height}
	m.Clear(empty)
	return m
}

func (m *ByteMatrix) Width() int  { return m.width }
func (m *ByteMatrix) Height() int { return m.height }

func (m *ByteMatrix) Get(x, y int) int8 { return m.cells[y*m.width+x] }

func (m *ByteMatrix) Set(x, y int, v int8) { m.cells[y*m.width+x] = v }

func (m *ByteMatrix) SetBool(x, y int, dark bool) {
	var v int8
	if dark {
		v = 1
	}
	m.Set(x, y, v)
}

func (m *ByteMatrix) IsEmpty(x, y int) bool { return m.Get(x, y) == empty }

func (m *ByteMatrix) Clear(v int8) {
	for i := range m.cells {
		m.cells[i] = v
	}
}

// ToBitMatrix converts dark cells to set bits.
func (m *ByteMatrix) ToBitMatrix() *bitutil.BitMatrix {
	bm := bitutil.NewBitMatrixWithSize(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) == 1 {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

// String draws dark cells as " 1", light as " 0" and empty as "  ".
func (m *ByteMatrix) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (2*m.width + 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			switch m.Get(x, y) {
			case 0:
				sb.WriteString(" 0")
			case 1:
				sb.WriteString(" 1")
			default:
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
