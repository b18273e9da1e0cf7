package decoder

import (
	"fmt"
	"math/bits"
	"sync"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

// ECB is a run of Count blocks carrying DataCodewords data codewords each.
type ECB struct {
	Count         int
	DataCodewords int
}

// ECBlocks describes how one version splits its codewords into blocks at
// one error correction level. Every block shares ECCodewordsPerBlock.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECB
}

func (e *ECBlocks) NumBlocks() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Count
	}
	return n
}

func (e *ECBlocks) TotalECCodewords() int {
	return e.ECCodewordsPerBlock * e.NumBlocks()
}

// DataCodewords is the number of data codewords across all blocks.
func (e *ECBlocks) DataCodewords() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Count * b.DataCodewords
	}
	return n
}

// Version is one of the forty QR Code symbol sizes.
type Version struct {
	Number                  int
	AlignmentPatternCenters []int
	TotalCodewords          int
	ecBlocks                [4]ECBlocks
}

// Dimension is the side of the symbol in modules.
func (v *Version) Dimension() int { return 17 + 4*v.Number }

func (v *Version) ECBlocksForLevel(level ErrorCorrectionLevel) *ECBlocks {
	return &v.ecBlocks[level.Ordinal()]
}

func (v *Version) String() string { return fmt.Sprintf("%d", v.Number) }

// BuildFunctionPattern marks the modules that carry no data: finder
// patterns with separators and format information, alignment patterns,
// timing patterns and, from version 7, version information.
func (v *Version) BuildFunctionPattern() *bitutil.BitMatrix {
	dim := v.Dimension()
	m := bitutil.NewBitMatrix(dim)
	region := func(left, top, w, h int) {
		if err := m.SetRegion(left, top, w, h); err != nil {
			panic(err)
		}
	}

	region(0, 0, 9, 9)
	region(dim-8, 0, 8, 9)
	region(0, dim-8, 9, 8)

	centers := v.AlignmentPatternCenters
	last := len(centers) - 1
	for i, cy := range centers {
		for j, cx := range centers {
			// Skip the three corners occupied by finder patterns.
			if (i == 0 && (j == 0 || j == last)) || (i == last && j == 0) {
				continue
			}
			region(cx-2, cy-2, 5, 5)
		}
	}

	region(6, 9, 1, dim-17)
	region(9, 6, dim-17, 1)

	if v.Number > 6 {
		region(dim-11, 0, 3, 6)
		region(0, dim-11, 6, 3)
	}
	return m
}

// VersionForNumber returns version 1 to 40.
func VersionForNumber(number int) (*Version, error) {
	if number < 1 || number > len(versionSpecs) {
		return nil, fmt.Errorf("%w: version %d", qrcode.ErrFormat, number)
	}
	return &allVersions()[number-1], nil
}

// ProvisionalVersionForDimension returns the version whose symbols are
// dimension modules wide.
func ProvisionalVersionForDimension(dimension int) (*Version, error) {
	if dimension%4 != 1 {
		return nil, fmt.Errorf("%w: dimension %d is not 1 mod 4", qrcode.ErrFormat, dimension)
	}
	return VersionForNumber((dimension - 17) / 4)
}

// versionInfo holds the 18-bit BCH encoded version information of
// versions 7 to 40.
var versionInfo = [...]int{
	0x07C94, 0x085BC, 0x09A99, 0x0A4D3, 0x0BBF6, 0x0C762, 0x0D847, 0x0E60D,
	0x0F928, 0x10B78, 0x1145D, 0x12A17, 0x13532, 0x149A6, 0x15683, 0x168C9,
	0x177EC, 0x18EC4, 0x191E1, 0x1AFAB, 0x1B08E, 0x1CC1A, 0x1D33F, 0x1ED75,
	0x1F250, 0x209D5, 0x216F0, 0x228BA, 0x2379F, 0x24B0B, 0x2542E, 0x26A64,
	0x27541, 0x28C69,
}

// VersionInfoBits returns the encoded version information for versions 7
// and up, and false for smaller versions which carry none.
func VersionInfoBits(number int) (int, bool) {
	if number < 7 || number > 40 {
		return 0, false
	}
	return versionInfo[number-7], true
}

// DecodeVersionInformation returns the version whose encoded information
// is closest to versionBits, accepting up to three bit errors.
func DecodeVersionInformation(versionBits int) (*Version, error) {
	best, bestDiff := 0, 32
	for i, target := range versionInfo {
		d := bits.OnesCount32(uint32(versionBits ^ target))
		if d < bestDiff {
			best, bestDiff = i+7, d
		}
		if d == 0 {
			break
		}
	}
	if bestDiff > 3 {
		return nil, fmt.Errorf("%w: version information %#x", qrcode.ErrFormat, versionBits)
	}
	return VersionForNumber(best)
}

// levelSpec is {EC codewords per block, count, data codewords[, count,
// data codewords]}.
type levelSpec [5]int

type versionSpec struct {
	number int
	align  []int
	levels [4]levelSpec
}

var allVersions = sync.OnceValue(func() []Version {
	vs := make([]Version, len(versionSpecs))
	for i, s := range versionSpecs {
		v := Version{Number: s.number, AlignmentPatternCenters: s.align}
		for l, lv := range s.levels {
			blocks := []ECB{{lv[1], lv[2]}}
			if lv[3] > 0 {
				blocks = append(blocks, ECB{lv[3], lv[4]})
			}
			v.ecBlocks[l] = ECBlocks{ECCodewordsPerBlock: lv[0], Blocks: blocks}
		}
		l := &v.ecBlocks[0]
		v.TotalCodewords = l.DataCodewords() + l.TotalECCodewords()
		vs[i] = v
	}
	return vs
})

// Levels are in L, M, Q, H order.
var versionSpecs = [...]versionSpec{
	{1, nil, [4]levelSpec{{7, 1, 19}, {10, 1, 16}, {13, 1, 13}, {17, 1, 9}}},
	{2, []int{6, 18}, [4]levelSpec{{10, 1, 34}, {16, 1, 28}, {22, 1, 22}, {28, 1, 16}}},
	{3, []int{6, 22}, [4]levelSpec{{15, 1, 55}, {26, 1, 44}, {18, 2, 17}, {22, 2, 13}}},
	{4, []int{6, 26}, [4]levelSpec{{20, 1, 80}, {18, 2, 32}, {26, 2, 24}, {16, 4, 9}}},
	{5, []int{6, 30}, [4]levelSpec{{26, 1, 108}, {24, 2, 43}, {18, 2, 15, 2, 16}, {22, 2, 11, 2, 12}}},
	{6, []int{6, 34}, [4]levelSpec{{18, 2, 68}, {16, 4, 27}, {24, 4, 19}, {28, 4, 15}}},
	{7, []int{6, 22, 38}, [4]levelSpec{{20, 2, 78}, {18, 4, 31}, {18, 2, 14, 4, 15}, {26, 4, 13, 1, 14}}},
	{8, []int{6, 24, 42}, [4]levelSpec{{24, 2, 97}, {22, 2, 38, 2, 39}, {22, 4, 18, 2, 19}, {26, 4, 14, 2, 15}}},
	{9, []int{6, 26, 46}, [4]levelSpec{{30, 2, 116}, {22, 3, 36, 2, 37}, {20, 4, 16, 4, 17}, {24, 4, 12, 4, 13}}},
	{10, []int{6, 28, 50}, [4]levelSpec{{18, 2, 68, 2, 69}, {26, 4, 43, 1, 44}, {24, 6, 19, 2, 20}, {28, 6, 15, 2, 16}}},
	{11, []int{6, 30, 54}, [4]levelSpec{{20, 4, 81}, {30, 1, 50, 4, 51}, {28, 4, 22, 4, 23}, {24, 3, 12, 8, 13}}},
	{12, []int{6, 32, 58}, [4]levelSpec{{24, 2, 92, 2, 93}, {22, 6, 36, 2, 37}, {26, 4, 20, 6, 21}, {28, 7, 14, 4, 15}}},
	{13, []int{6, 34, 62}, [4]levelSpec{{26, 4, 107}, {22, 8, 37, 1, 38}, {24, 8, 20, 4, 21}, {22, 12, 11, 4, 12}}},
	{14, []int{6, 26, 46, 66}, [4]levelSpec{{30, 3, 115, 1, 116}, {24, 4, 40, 5, 41}, {20, 11, 16, 5, 17}, {24, 11, 12, 5, 13}}},
	{15, []int{6, 26, 48, 70}, [4]levelSpec{{22, 5, 87, 1, 88}, {24, 5, 41, 5, 42}, {30, 5, 24, 7, 25}, {24, 11, 12, 7, 13}}},
	{16, []int{6, 26, 50, 74}, [4]levelSpec{{24, 5, 98, 1, 99}, {28, 7, 45, 3, 46}, {24, 15, 19, 2, 20}, {30, 3, 15, 13, 16}}},
	{17, []int{6, 30, 54, 78}, [4]levelSpec{{28, 1, 107, 5, 108}, {28, 10, 46, 1, 47}, {28, 1, 22, 15, 23}, {28, 2, 14, 17, 15}}},
	{18, []int{6, 30, 56, 82}, [4]levelSpec{{30, 5, 120, 1, 121}, {26, 9, 43, 4, 44}, {28, 17, 22, 1, 23}, {28, 2, 14, 19, 15}}},
	{19, []int{6, 30, 58, 86}, [4]levelSpec{{28, 3, 113, 4, 114}, {26, 3, 44, 11, 45}, {26, 17, 21, 4, 22}, {26, 9, 13, 16, 14}}},
	{20, []int{6, 34, 62, 90}, [4]levelSpec{{28, 3, 107, 5, 108}, {26, 3, 41, 13, 42}, {30, 15, 24, 5, 25}, {28, 15, 15, 10, 16}}},
	{21, []int{6, 28, 50, 72, 94}, [4]levelSpec{{28, 4, 116, 4, 117}, {26, 17, 42}, {28, 17, 22, 6, 23}, {30, 19, 16, 6, 17}}},
	{22, []int{6, 26, 50, 74, 98}, [4]levelSpec{{28, 2, 111, 7, 112}, {28, 17, 46}, {30, 7, 24, 16, 25}, {24, 34, 13}}},
	{23, []int{6, 30, 54, 78, 102}, [4]levelSpec{{30, 4, 121, 5, 122}, {28, 4, 47, 14, 48}, {30, 11, 24, 14, 25}, {30, 16, 15, 14, 16}}},
	{24, []int{6, 28, 54, 80, 106}, [4]levelSpec{{30, 6, 117, 4, 118}, {28, 6, 45, 14, 46}, {30, 11, 24, 16, 25}, {30, 30, 16, 2, 17}}},
	{25, []int{6, 32, 58, 84, 110}, [4]levelSpec{{26, 8, 106, 4, 107}, {28, 8, 47, 13, 48}, {30, 7, 24, 22, 25}, {30, 22, 15, 13, 16}}},
	{26, []int{6, 30, 58, 86, 114}, [4]levelSpec{{28, 10, 114, 2, 115}, {28, 19, 46, 4, 47}, {28, 28, 22, 6, 23}, {30, 33, 16, 4, 17}}},
	{27, []int{6, 34, 62, 90, 118}, [4]levelSpec{{30, 8, 122, 4, 123}, {28, 22, 45, 3, 46}, {30, 8, 23, 26, 24}, {30, 12, 15, 28, 16}}},
	{28, []int{6, 26, 50, 74, 98, 122}, [4]levelSpec{{30, 3, 117, 10, 118}, {28, 3, 45, 23, 46}, {30, 4, 24, 31, 25}, {30, 11, 15, 31, 16}}},
	{29, []int{6, 30, 54, 78, 102, 126}, [4]levelSpec{{30, 7, 116, 7, 117}, {28, 21, 45, 7, 46}, {30, 1, 23, 37, 24}, {30, 19, 15, 26, 16}}},
	{30, []int{6, 26, 52, 78, 104, 130}, [4]levelSpec{{30, 5, 115, 10, 116}, {28, 19, 47, 10, 48}, {30, 15, 24, 25, 25}, {30, 23, 15, 25, 16}}},
	{31, []int{6, 30, 56, 82, 108, 134}, [4]levelSpec{{30, 13, 115, 3, 116}, {28, 2, 46, 29, 47}, {30, 42, 24, 1, 25}, {30, 23, 15, 28, 16}}},
	{32, []int{6, 34, 60, 86, 112, 138}, [4]levelSpec{{30, 17, 115}, {28, 10, 46, 23, 47}, {30, 10, 24, 35, 25}, {30, 19, 15, 35, 16}}},
	{33, []int{6, 30, 58, 86, 114, 142}, [4]levelSpec{{30, 17, 115, 1, 116}, {28, 14, 46, 21, 47}, {30, 29, 24, 19, 25}, {30, 11, 15, 46, 16}}},
	{34, []int{6, 34, 62, 90, 118, 146}, [4]levelSpec{{30, 13, 115, 6, 116}, {28, 14, 46, 23, 47}, {30, 44, 24, 7, 25}, {30, 59, 16, 1, 17}}},
	{35, []int{6, 30, 54, 78, 102, 126, 150}, [4]levelSpec{{30, 12, 121, 7, 122}, {28, 12, 47, 26, 48}, {30, 39, 24, 14, 25}, {30, 22, 15, 41, 16}}},
	{36, []int{6, 24, 50, 76, 102, 128, 154}, [4]levelSpec{{30, 6, 121, 14, 122}, {28, 6, 47, 34, 48}, {30, 46, 24, 10, 25}, {30, 2, 15, 64, 16}}},
	{37, []int{6, 28, 54, 80, 106, 132, 158}, [4]levelSpec{{30, 17, 122, 4, 123}, {28, 29, 46, 14, 47}, {30, 49, 24, 10, 25}, {30, 24, 15, 46, 16}}},
	{38, []int{6, 32, 58, 84, 110, 136, 162}, [4]levelSpec{{30, 4, 122, 18, 123}, {28, 13, 46, 32, 47}, {30, 48, 24, 14, 25}, {30, 42, 15, 32, 16}}},
	{39, []int{6, 26, 54, 82, 110, 138, 166}, [4]levelSpec{{30, 20, 117, 4, 118}, {28, 40, 47, 7, 48}, {30, 43, 24, 22, 25}, {30, 10, 15, 67, 16}}},
	{40, []int{6, 30, 58, 86, 114, 142, 170}, [4]levelSpec{{30, 19, 118, 6, 119}, {28, 18, 47, 31, 48}, {30, 34, 24, 34, 25}, {30, 20, 15, 61, 16}}},
}
