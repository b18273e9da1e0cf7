// Package decoder reads the codewords of a sampled QR Code module grid,
// corrects them, and decodes the resulting bit stream into text.
package decoder

import (
	"fmt"
	"strings"

	qrcode "github.com/coco-projects/qrcode"
)

// ErrorCorrectionLevel is one of the four QR Code recovery levels, in
// increasing order of redundancy.
type ErrorCorrectionLevel int

const (
	ECLevelL ErrorCorrectionLevel = iota // about 7% recovery
	ECLevelM                             // about 15%
	ECLevelQ                             // about 25%
	ECLevelH                             // about 30%
)

var ecLevelNames = [4]string{"L", "M", "Q", "H"}

// ecLevelBits maps a level to its two bit code in the format information.
var ecLevelBits = [4]int{0x01, 0x00, 0x03, 0x02}

// Bits is the two bit code of the level in the format information.
func (l ErrorCorrectionLevel) Bits() int { return ecLevelBits[l] }

func (l ErrorCorrectionLevel) Ordinal() int { return int(l) }

func (l ErrorCorrectionLevel) String() string {
	if l < ECLevelL || l > ECLevelH {
		return "?"
	}
	return ecLevelNames[l]
}

// ECLevelForBits decodes the two bit level code of the format information.
func ECLevelForBits(b int) (ErrorCorrectionLevel, error) {
	for l, code := range ecLevelBits {
		if code == b {
			return ErrorCorrectionLevel(l), nil
		}
	}
	return 0, fmt.Errorf("%w: error correction bits %#x", qrcode.ErrFormat, b)
}

// ParseECLevel accepts "L", "M", "Q" or "H" in any case.
func ParseECLevel(s string) (ErrorCorrectionLevel, error) {
	for l, name := range ecLevelNames {
		if strings.EqualFold(s, name) {
			return ErrorCorrectionLevel(l), nil
		}
	}
	return 0, fmt.Errorf("decoder: unknown error correction level %q", s)
}
