package encoder

import (
	"fmt"
	"strings"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/decoder"
)

// alphanumericCode returns the alphanumeric mode value of c, or -1.
func alphanumericCode(c byte) int {
	return strings.IndexByte(decoder.AlphanumericChars, c)
}

// ChooseMode picks the densest single mode for content. Kanji is only
// considered when the byte charset is Shift_JIS.
func ChooseMode(content string, enc *charset.ECI) decoder.Mode {
	if enc == charset.ShiftJIS && isOnlyDoubleByteKanji(content) {
		return decoder.ModeKanji
	}
	if content == "" {
		return decoder.ModeByte
	}
	numeric, alnum := true, true
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c < '0' || c > '9' {
			numeric = false
			if alphanumericCode(c) < 0 {
				alnum = false
				break
			}
		}
	}
	switch {
	case numeric:
		return decoder.ModeNumeric
	case alnum:
		return decoder.ModeAlphanumeric
	}
	return decoder.ModeByte
}

func isOnlyDoubleByteKanji(content string) bool {
	raw, err := charset.Encode(content, charset.ShiftJIS)
	if err != nil || len(raw) == 0 || len(raw)%2 != 0 {
		return false
	}
	for i := 0; i < len(raw); i += 2 {
		b := raw[i]
		if (b < 0x81 || b > 0x9F) && (b < 0xE0 || b > 0xEB) {
			return false
		}
	}
	return true
}

// appendData writes content's payload in mode and returns the character
// count the segment header declares.
func appendData(content string, mode decoder.Mode, enc *charset.ECI, bits *bitutil.BitArray) (int, error) {
	switch mode {
	case decoder.ModeNumeric:
		appendNumeric(content, bits)
		return len(content), nil
	case decoder.ModeAlphanumeric:
		return len(content), appendAlphanumeric(content, bits)
	case decoder.ModeByte:
		raw, err := charset.Encode(content, enc)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", qrcode.ErrWriter, err)
		}
		for _, b := range raw {
			bits.AppendBits(uint32(b), 8)
		}
		return len(raw), nil
	case decoder.ModeKanji:
		return appendKanji(content, bits)
	}
	return 0, fmt.Errorf("%w: cannot encode mode %s", qrcode.ErrUnsupported, mode)
}

// appendNumeric packs digit triples into 10 bits, a trailing pair into 7
// and a single digit into 4.
func appendNumeric(content string, bits *bitutil.BitArray) {
	for i := 0; i < len(content); {
		n := min(3, len(content)-i)
		v := 0
		for _, c := range []byte(content[i : i+n]) {
			v = v*10 + int(c-'0')
		}
		bits.AppendBits(uint32(v), 3*n+1)
		i += n
	}
}

func appendAlphanumeric(content string, bits *bitutil.BitArray) error {
	for i := 0; i < len(content); i += 2 {
		c1 := alphanumericCode(content[i])
		if c1 < 0 {
			return fmt.Errorf("%w: %q is not alphanumeric", qrcode.ErrWriter, content[i])
		}
		if i+1 == len(content) {
			bits.AppendBits(uint32(c1), 6)
			break
		}
		c2 := alphanumericCode(content[i+1])
		if c2 < 0 {
			return fmt.Errorf("%w: %q is not alphanumeric", qrcode.ErrWriter, content[i+1])
		}
		bits.AppendBits(uint32(c1*45+c2), 11)
	}
	return nil
}

// appendKanji compacts each Shift_JIS pair into 13 bits.
func appendKanji(content string, bits *bitutil.BitArray) (int, error) {
	raw, err := charset.Encode(content, charset.ShiftJIS)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", qrcode.ErrWriter, err)
	}
	if len(raw)%2 != 0 {
		return 0, fmt.Errorf("%w: odd Shift_JIS length %d", qrcode.ErrWriter, len(raw))
	}
	for i := 0; i < len(raw); i += 2 {
		code := int(raw[i])<<8 | int(raw[i+1])
		var sub int
		switch {
		case code >= 0x8140 && code <= 0x9FFC:
			sub = code - 0x8140
		case code >= 0xE040 && code <= 0xEBBF:
			sub = code - 0xC140
		default:
			return 0, fmt.Errorf("%w: %#04x is not a Kanji code", qrcode.ErrWriter, code)
		}
		bits.AppendBits(uint32((sub>>8)*0xC0+(sub&0xFF)), 13)
	}
	return len(raw) / 2, nil
}
