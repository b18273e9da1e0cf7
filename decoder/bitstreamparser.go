package decoder

import (
	"fmt"
	"strconv"
	"strings"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/internal"
)

// AlphanumericChars is the 45 character alphanumeric mode alphabet, in
// code order.
const AlphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// gs is the GS1 group separator that FNC1 '%' characters stand for.
const gs = 0x1D

// gb2312Subset is the only Hanzi subset this decoder understands.
const gb2312Subset = 1

type streamState struct {
	src        *bitutil.BitSource
	version    *Version
	text       strings.Builder
	segments   [][]byte
	eci        *charset.ECI
	hint       *charset.ECI
	fnc1       bool
	fnc1First  bool
	fnc1Second bool
	saSequence int
	saParity   int
	sawECI     bool
}

// DecodeBitStream decodes the data codewords of a symbol into text.
// hint is the charset assumed for byte segments not preceded by an ECI;
// nil means guess from the bytes.
//
// Decoding stops at a terminator, or when fewer than four bits remain for
// the next mode indicator. A segment whose declared length runs past the
// end of the data is a format error.
func DecodeBitStream(data []byte, v *Version, level ErrorCorrectionLevel, hint *charset.ECI) (*internal.DecoderResult, error) {
	st := &streamState{
		src:        bitutil.NewBitSource(data),
		version:    v,
		hint:       hint,
		saSequence: -1,
		saParity:   -1,
	}
	for {
		mode := ModeTerminator
		if st.src.Available() >= 4 {
			b, err := st.src.ReadBits(4)
			if err != nil {
				return nil, err
			}
			if mode, err = ModeForBits(b); err != nil {
				return nil, err
			}
		}
		if mode == ModeTerminator {
			break
		}
		if err := st.segment(mode); err != nil {
			return nil, fmt.Errorf("%s segment: %w", mode, err)
		}
	}

	r := internal.NewDecoderResult(data, st.text.String(), st.segments, level.String())
	r.StructuredAppendSequenceNumber = st.saSequence
	r.StructuredAppendParity = st.saParity
	r.SymbologyModifier = st.symbologyModifier()
	return r, nil
}

// symbologyModifier is the AIM modifier digit: 1 plain, 3 GS1, 5 AIM
// application, each plus one when an ECI was present.
func (st *streamState) symbologyModifier() int {
	m := 1
	switch {
	case st.fnc1First:
		m = 3
	case st.fnc1Second:
		m = 5
	}
	if st.sawECI {
		m++
	}
	return m
}

func (st *streamState) segment(mode Mode) error {
	switch mode {
	case ModeFNC1FirstPosition:
		st.fnc1First, st.fnc1 = true, true
		return nil
	case ModeFNC1SecondPosition:
		st.fnc1Second, st.fnc1 = true, true
		return nil
	case ModeStructuredAppend:
		if st.src.Available() < 16 {
			return fmt.Errorf("%w: truncated structured append header", qrcode.ErrFormat)
		}
		st.saSequence, _ = st.src.ReadBits(8)
		st.saParity, _ = st.src.ReadBits(8)
		return nil
	case ModeECI:
		value, err := st.eciDesignator()
		if err != nil {
			return err
		}
		eci, err := charset.ECIByValue(value)
		if err != nil {
			return fmt.Errorf("%w: %w", qrcode.ErrFormat, err)
		}
		st.eci, st.sawECI = eci, true
		return nil
	case ModeHanzi:
		subset, err := st.src.ReadBits(4)
		if err != nil {
			return err
		}
		count, err := st.src.ReadBits(mode.CharacterCountBits(st.version))
		if err != nil {
			return err
		}
		if subset != gb2312Subset {
			return nil
		}
		return st.hanzi(count)
	}

	count, err := st.src.ReadBits(mode.CharacterCountBits(st.version))
	if err != nil {
		return err
	}
	switch mode {
	case ModeNumeric:
		return st.numeric(count)
	case ModeAlphanumeric:
		return st.alphanumeric(count)
	case ModeByte:
		return st.bytes(count)
	case ModeKanji:
		return st.kanji(count)
	}
	return fmt.Errorf("%w: unexpected mode", qrcode.ErrFormat)
}

// eciDesignator reads a one, two or three byte ECI assignment number; the
// count of leading one bits in the first byte gives the extra length.
func (st *streamState) eciDesignator() (int, error) {
	first, err := st.src.ReadBits(8)
	if err != nil {
		return 0, err
	}
	switch {
	case first&0x80 == 0:
		return first, nil
	case first&0xC0 == 0x80:
		second, err := st.src.ReadBits(8)
		if err != nil {
			return 0, err
		}
		return (first&0x3F)<<8 | second, nil
	case first&0xE0 == 0xC0:
		rest, err := st.src.ReadBits(16)
		if err != nil {
			return 0, err
		}
		return (first&0x1F)<<16 | rest, nil
	}
	return 0, fmt.Errorf("%w: ECI designator %#x", qrcode.ErrFormat, first)
}

func (st *streamState) need(bits int) error {
	if bits > st.src.Available() {
		return fmt.Errorf("%w: segment needs %d bits, %d left", qrcode.ErrFormat, bits, st.src.Available())
	}
	return nil
}

// numeric reads three digits per 10 bits, with a trailing pair in 7 bits
// or a single digit in 4.
func (st *streamState) numeric(count int) error {
	for count > 0 {
		width, digits, limit := 10, 3, 1000
		switch count {
		case 2:
			width, digits, limit = 7, 2, 100
		case 1:
			width, digits, limit = 4, 1, 10
		}
		if err := st.need(width); err != nil {
			return err
		}
		v, _ := st.src.ReadBits(width)
		if v >= limit {
			return fmt.Errorf("%w: %d is not a %d digit group", qrcode.ErrFormat, v, digits)
		}
		s := strconv.Itoa(v)
		st.text.WriteString(strings.Repeat("0", digits-len(s)))
		st.text.WriteString(s)
		count -= digits
	}
	return nil
}

func alphanumericChar(v int) (byte, error) {
	if v >= len(AlphanumericChars) {
		return 0, fmt.Errorf("%w: alphanumeric value %d", qrcode.ErrFormat, v)
	}
	return AlphanumericChars[v], nil
}

// alphanumeric reads two characters per 11 bits and a trailing one in 6.
// Under FNC1, "%%" is a literal percent sign and a lone '%' is the group
// separator.
func (st *streamState) alphanumeric(count int) error {
	seg := make([]byte, 0, count)
	for ; count > 1; count -= 2 {
		if err := st.need(11); err != nil {
			return err
		}
		v, _ := st.src.ReadBits(11)
		c1, err := alphanumericChar(v / 45)
		if err != nil {
			return err
		}
		c2, err := alphanumericChar(v % 45)
		if err != nil {
			return err
		}
		seg = append(seg, c1, c2)
	}
	if count == 1 {
		if err := st.need(6); err != nil {
			return err
		}
		v, _ := st.src.ReadBits(6)
		c, err := alphanumericChar(v)
		if err != nil {
			return err
		}
		seg = append(seg, c)
	}
	if !st.fnc1 {
		st.text.Write(seg)
		return nil
	}
	for i := 0; i < len(seg); i++ {
		switch {
		case seg[i] != '%':
			st.text.WriteByte(seg[i])
		case i+1 < len(seg) && seg[i+1] == '%':
			st.text.WriteByte('%')
			i++
		default:
			st.text.WriteByte(gs)
		}
	}
	return nil
}

// bytes reads count octets and decodes them with the current ECI, the
// caller's hint, or a guess, in that order.
func (st *streamState) bytes(count int) error {
	if err := st.need(8 * count); err != nil {
		return err
	}
	raw := make([]byte, count)
	for i := range raw {
		v, _ := st.src.ReadBits(8)
		raw[i] = byte(v)
	}
	enc := st.eci
	if enc == nil {
		enc = charset.GuessEncoding(raw, st.hint)
	}
	s, err := charset.Decode(raw, enc)
	if err != nil {
		return fmt.Errorf("%w: %w", qrcode.ErrFormat, err)
	}
	st.text.WriteString(s)
	st.segments = append(st.segments, raw)
	return nil
}

// doubleByte reads count 13-bit values and expands each into a two byte
// code: value/div is the high byte offset, value%div the low one, and base
// picks the code range.
func (st *streamState) doubleByte(count, div int, base func(int) int, eci *charset.ECI) error {
	if err := st.need(13 * count); err != nil {
		return err
	}
	buf := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v, _ := st.src.ReadBits(13)
		code := (v/div)<<8 | v%div
		code += base(code)
		buf = append(buf, byte(code>>8), byte(code))
	}
	s, err := charset.Decode(buf, eci)
	if err != nil {
		return fmt.Errorf("%w: %w", qrcode.ErrFormat, err)
	}
	st.text.WriteString(s)
	return nil
}

func (st *streamState) kanji(count int) error {
	return st.doubleByte(count, 0xC0, func(code int) int {
		if code < 0x1F00 {
			return 0x8140
		}
		return 0xC140
	}, charset.ShiftJIS)
}

func (st *streamState) hanzi(count int) error {
	return st.doubleByte(count, 0x60, func(code int) int {
		if code < 0xA00 {
			return 0xA1A1
		}
		return 0xA6A1
	}, charset.GB18030)
}
