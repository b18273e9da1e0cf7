package encoder

import (
	"fmt"
	"math/bits"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/decoder"
)

const (
	formatInfoPoly  = 0x537
	versionInfoPoly = 0x1F25
)

var finderPattern = [7][7]int8{
	{1, 1, 1, 1, 1, 1, 1},
	{1, 0, 0, 0, 0, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 1},
	{1, 0, 0, 0, 0, 0, 1},
	{1, 1, 1, 1, 1, 1, 1},
}

var alignmentPattern = [5][5]int8{
	{1, 1, 1, 1, 1},
	{1, 0, 0, 0, 1},
	{1, 0, 1, 0, 1},
	{1, 0, 0, 0, 1},
	{1, 1, 1, 1, 1},
}

// formatInfoCoords is where the 15 format bits go around the top-left
// finder, least significant bit first.
var formatInfoCoords = [15][2]int{
	{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
	{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
}

// buildMatrix lays out function patterns, format and version information,
// and the masked data bits.
func buildMatrix(data *bitutil.BitArray, level decoder.ErrorCorrectionLevel, v *decoder.Version, mask int, m *ByteMatrix) error {
	m.Clear(empty)
	placeFunctionPatterns(v, m)
	placeFormatInfo(level, mask, m)
	placeVersionInfo(v, m)
	return placeData(data, mask, m)
}

func placeFunctionPatterns(v *decoder.Version, m *ByteMatrix) {
	dim := m.Width()
	for _, corner := range [3][2]int{{0, 0}, {dim - 7, 0}, {0, dim - 7}} {
		for y := 0; y < 7; y++ {
			for x := 0; x < 7; x++ {
				m.Set(corner[0]+x, corner[1]+y, finderPattern[y][x])
			}
		}
	}

	// Light separators around the finders.
	for i := 0; i < 8; i++ {
		m.Set(i, 7, 0)
		m.Set(dim-8+i, 7, 0)
		m.Set(i, dim-8, 0)
		m.Set(7, i, 0)
		m.Set(dim-8, i, 0)
		m.Set(7, dim-8+i, 0)
	}

	for _, cy := range v.AlignmentPatternCenters {
		for _, cx := range v.AlignmentPatternCenters {
			if !m.IsEmpty(cx, cy) {
				continue
			}
			for y := 0; y < 5; y++ {
				for x := 0; x < 5; x++ {
					m.Set(cx-2+x, cy-2+y, alignmentPattern[y][x])
				}
			}
		}
	}

	for i := 8; i < dim-8; i++ {
		dark := int8((i + 1) % 2)
		if m.IsEmpty(i, 6) {
			m.Set(i, 6, dark)
		}
		if m.IsEmpty(6, i) {
			m.Set(6, i, dark)
		}
	}

	// The single dark module above the bottom-left separator.
	m.Set(8, dim-8, 1)
}

// bchCode returns the remainder of value shifted left by the degree of
// poly, divided by poly over GF(2).
func bchCode(value, poly int) int {
	degree := bits.Len(uint(poly)) - 1
	value <<= degree
	for bits.Len(uint(value)) > degree {
		value ^= poly << (bits.Len(uint(value)) - degree - 1)
	}
	return value
}

func placeFormatInfo(level decoder.ErrorCorrectionLevel, mask int, m *ByteMatrix) {
	info := level.Bits()<<3 | mask
	code := (info<<10 | bchCode(info, formatInfoPoly)) ^ decoder.FormatInfoMask
	dim := m.Width()
	for i, c := range formatInfoCoords {
		dark := code>>i&1 == 1
		m.SetBool(c[0], c[1], dark)
		if i < 8 {
			m.SetBool(dim-1-i, 8, dark)
		} else {
			m.SetBool(8, dim-7+i-8, dark)
		}
	}
}

func placeVersionInfo(v *decoder.Version, m *ByteMatrix) {
	if v.Number < 7 {
		return
	}
	code := v.Number<<12 | bchCode(v.Number, versionInfoPoly)
	dim := m.Width()
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			dark := code>>(3*i+j)&1 == 1
			m.SetBool(i, dim-11+j, dark)
			m.SetBool(dim-11+j, i, dark)
		}
	}
}

// placeData fills the empty cells in the order the decoder reads them,
// padding with light modules past the end of data, and applies the mask.
func placeData(data *bitutil.BitArray, mask int, m *ByteMatrix) error {
	dim := m.Width()
	masked := decoder.DataMasks[mask]
	next := 0
	up := true
	for right := dim - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for k := 0; k < dim; k++ {
			y := k
			if up {
				y = dim - 1 - k
			}
			for x := right; x > right-2; x-- {
				if !m.IsEmpty(x, y) {
					continue
				}
				dark := false
				if next < data.Size() {
					dark = data.Get(next)
					next++
				}
				m.SetBool(x, y, dark != masked(y, x))
			}
		}
		up = !up
	}
	if next != data.Size() {
		return fmt.Errorf("%w: placed %d of %d data bits", qrcode.ErrWriter, next, data.Size())
	}
	return nil
}
