package decoder

import (
	"fmt"
	"math/bits"

	qrcode "github.com/coco-projects/qrcode"
)

// FormatInfoMask is XORed onto the 15 format information bits so that they
// are never all zero.
const FormatInfoMask = 0x5412

// FormatInformation is the error correction level and data mask of a
// symbol.
type FormatInformation struct {
	ECLevel  ErrorCorrectionLevel
	DataMask int
}

// formatInfoCodes lists the masked 15-bit format information for each of
// the 32 (level bits << 3 | mask) values.
var formatInfoCodes = [32]int{
	0x5412, 0x5125, 0x5E7C, 0x5B4B, 0x45F9, 0x40CE, 0x4F97, 0x4AA0,
	0x77C4, 0x72F3, 0x7DAA, 0x789D, 0x662F, 0x6318, 0x6C41, 0x6976,
	0x1689, 0x13BE, 0x1CE7, 0x19D0, 0x0762, 0x0255, 0x0D0C, 0x083B,
	0x355F, 0x3068, 0x3F31, 0x3A06, 0x24B4, 0x2183, 0x2EDA, 0x2BED,
}

// FormatInfoBits returns the masked format information for a level and
// mask, as written next to the finder patterns.
func FormatInfoBits(level ErrorCorrectionLevel, mask int) int {
	return formatInfoCodes[level.Bits()<<3|mask]
}

// DecodeFormatInformation decodes the two copies read from a symbol. The
// closest code to either copy wins if it is within three bits. Copies that
// were read without removing the mask are retried with it removed.
func DecodeFormatInformation(copy1, copy2 int) (*FormatInformation, error) {
	if fi, ok := decodeFormatInformation(copy1, copy2); ok {
		return fi, nil
	}
	if fi, ok := decodeFormatInformation(copy1^FormatInfoMask, copy2^FormatInfoMask); ok {
		return fi, nil
	}
	return nil, fmt.Errorf("%w: format information %#x / %#x", qrcode.ErrFormat, copy1, copy2)
}

func decodeFormatInformation(copy1, copy2 int) (*FormatInformation, bool) {
	best, bestDiff := 0, 32
	for value, code := range formatInfoCodes {
		for _, c := range [2]int{copy1, copy2} {
			if d := bits.OnesCount32(uint32(c ^ code)); d < bestDiff {
				best, bestDiff = value, d
			}
		}
		if bestDiff == 0 {
			break
		}
	}
	if bestDiff > 3 {
		return nil, false
	}
	level, _ := ECLevelForBits(best >> 3 & 0x03)
	return &FormatInformation{ECLevel: level, DataMask: best & 0x07}, true
}
