package decoder

import (
	"fmt"

	qrcode "github.com/coco-projects/qrcode"
)

// Mode is the four bit indicator that starts each segment.
type Mode int

const (
	ModeTerminator         Mode = 0x0
	ModeNumeric            Mode = 0x1
	ModeAlphanumeric       Mode = 0x2
	ModeStructuredAppend   Mode = 0x3
	ModeByte               Mode = 0x4
	ModeFNC1FirstPosition  Mode = 0x5
	ModeECI                Mode = 0x7
	ModeKanji              Mode = 0x8
	ModeFNC1SecondPosition Mode = 0x9
	// ModeHanzi is the GB/T 18284 extension for GB2312 text.
	ModeHanzi Mode = 0xD
)

type modeInfo struct {
	name  string
	count [3]int
}

// modes lists the character count widths for versions 1-9, 10-26 and
// 27-40. Modes without a count have zero widths.
var modes = map[Mode]modeInfo{
	ModeTerminator:         {"TERMINATOR", [3]int{}},
	ModeNumeric:            {"NUMERIC", [3]int{10, 12, 14}},
	ModeAlphanumeric:       {"ALPHANUMERIC", [3]int{9, 11, 13}},
	ModeStructuredAppend:   {"STRUCTURED_APPEND", [3]int{}},
	ModeByte:               {"BYTE", [3]int{8, 16, 16}},
	ModeFNC1FirstPosition:  {"FNC1_FIRST_POSITION", [3]int{}},
	ModeECI:                {"ECI", [3]int{}},
	ModeKanji:              {"KANJI", [3]int{8, 10, 12}},
	ModeFNC1SecondPosition: {"FNC1_SECOND_POSITION", [3]int{}},
	ModeHanzi:              {"HANZI", [3]int{8, 10, 12}},
}

func ModeForBits(b int) (Mode, error) {
	if _, ok := modes[Mode(b)]; !ok {
		return 0, fmt.Errorf("%w: mode indicator %#x", qrcode.ErrFormat, b)
	}
	return Mode(b), nil
}

// CharacterCountBits is the width of the character count field of this
// mode in a symbol of version v.
func (m Mode) CharacterCountBits(v *Version) int {
	tier := 2
	switch {
	case v.Number <= 9:
		tier = 0
	case v.Number <= 26:
		tier = 1
	}
	return modes[m].count[tier]
}

func (m Mode) Bits() int { return int(m) }

func (m Mode) String() string {
	if info, ok := modes[m]; ok {
		return info.name
	}
	return fmt.Sprintf("Mode(%#x)", int(m))
}
