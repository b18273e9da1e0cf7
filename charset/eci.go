// Package charset maps QR Extended Channel Interpretation (ECI) values to
// text encodings and converts byte-mode payloads to and from UTF-8.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidECI is returned for ECI designators outside 0..999999 and for
// values with no assigned character set.
var ErrInvalidECI = errors.New("charset: invalid ECI value")

// ECI is one character set that a QR symbol can switch to.
type ECI struct {
	// Value is the primary designator written by encoders.
	Value int
	// Name is the canonical name, also accepted by ECIByName.
	Name    string
	aliases []string
	values  []int
	enc     encoding.Encoding
}

func (e *ECI) String() string { return e.Name }

// Encoding returns the x/text encoding behind e.
func (e *ECI) Encoding() encoding.Encoding { return e.enc }

// The QR character sets. ISO-8859-11 decodes through Windows-874, its
// superset, and US-ASCII through Latin-1.
var (
	Cp437      = &ECI{Value: 0, Name: "Cp437", values: []int{0, 2}, aliases: []string{"IBM437"}, enc: charmap.CodePage437}
	ISO8859_1  = &ECI{Value: 1, Name: "ISO-8859-1", values: []int{1, 3}, aliases: []string{"ISO8859_1", "latin1"}, enc: charmap.ISO8859_1}
	ISO8859_2  = latin(4, 2, charmap.ISO8859_2)
	ISO8859_3  = latin(5, 3, charmap.ISO8859_3)
	ISO8859_4  = latin(6, 4, charmap.ISO8859_4)
	ISO8859_5  = latin(7, 5, charmap.ISO8859_5)
	ISO8859_6  = latin(8, 6, charmap.ISO8859_6)
	ISO8859_7  = latin(9, 7, charmap.ISO8859_7)
	ISO8859_8  = latin(10, 8, charmap.ISO8859_8)
	ISO8859_9  = latin(11, 9, charmap.ISO8859_9)
	ISO8859_10 = latin(12, 10, charmap.ISO8859_10)
	ISO8859_11 = latin(13, 11, charmap.Windows874)
	ISO8859_13 = latin(15, 13, charmap.ISO8859_13)
	ISO8859_14 = latin(16, 14, charmap.ISO8859_14)
	ISO8859_15 = latin(17, 15, charmap.ISO8859_15)
	ISO8859_16 = latin(18, 16, charmap.ISO8859_16)
	ShiftJIS   = &ECI{Value: 20, Name: "Shift_JIS", aliases: []string{"SJIS"}, enc: japanese.ShiftJIS}
	Cp1250     = &ECI{Value: 21, Name: "windows-1250", aliases: []string{"Cp1250"}, enc: charmap.Windows1250}
	Cp1251     = &ECI{Value: 22, Name: "windows-1251", aliases: []string{"Cp1251"}, enc: charmap.Windows1251}
	Cp1252     = &ECI{Value: 23, Name: "windows-1252", aliases: []string{"Cp1252"}, enc: charmap.Windows1252}
	Cp1256     = &ECI{Value: 24, Name: "windows-1256", aliases: []string{"Cp1256"}, enc: charmap.Windows1256}
	UTF16BE    = &ECI{Value: 25, Name: "UTF-16BE", aliases: []string{"UnicodeBigUnmarked", "UnicodeBig"}, enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	UTF8       = &ECI{Value: 26, Name: "UTF-8", aliases: []string{"UTF8"}, enc: unicode.UTF8}
	ASCII      = &ECI{Value: 27, Name: "US-ASCII", values: []int{27, 170}, aliases: []string{"ASCII"}, enc: charmap.ISO8859_1}
	Big5       = &ECI{Value: 28, Name: "Big5", enc: traditionalchinese.Big5}
	GB18030    = &ECI{Value: 29, Name: "GB18030", aliases: []string{"GB2312", "EUC_CN", "GBK"}, enc: simplifiedchinese.GB18030}
	EUCKR      = &ECI{Value: 30, Name: "EUC-KR", aliases: []string{"EUC_KR"}, enc: korean.EUCKR}
)

func latin(value, part int, enc encoding.Encoding) *ECI {
	return &ECI{
		Value:   value,
		Name:    fmt.Sprintf("ISO-8859-%d", part),
		aliases: []string{fmt.Sprintf("ISO8859_%d", part)},
		enc:     enc,
	}
}

var (
	all = []*ECI{
		Cp437, ISO8859_1, ISO8859_2, ISO8859_3, ISO8859_4, ISO8859_5,
		ISO8859_6, ISO8859_7, ISO8859_8, ISO8859_9, ISO8859_10, ISO8859_11,
		ISO8859_13, ISO8859_14, ISO8859_15, ISO8859_16, ShiftJIS, Cp1250,
		Cp1251, Cp1252, Cp1256, UTF16BE, UTF8, ASCII, Big5, GB18030, EUCKR,
	}
	byValue = map[int]*ECI{}
	byName  = map[string]*ECI{}
)

func init() {
	for _, e := range all {
		values := e.values
		if values == nil {
			values = []int{e.Value}
		}
		for _, v := range values {
			byValue[v] = e
		}
		byName[strings.ToLower(e.Name)] = e
		for _, a := range e.aliases {
			byName[strings.ToLower(a)] = e
		}
	}
}

// ECIByValue resolves an ECI designator read from a symbol.
func ECIByValue(value int) (*ECI, error) {
	if value < 0 || value > 999999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidECI, value)
	}
	e, ok := byValue[value]
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a character set", ErrInvalidECI, value)
	}
	return e, nil
}

// ECIByName resolves a character set name, case-insensitively. Names not
// in the QR table are looked up in the IANA registry and matched by
// encoding, so "latin1" or "csShiftJIS" work too. It returns nil when the
// name is unknown or has no ECI.
func ECIByName(name string) *ECI {
	if e, ok := byName[strings.ToLower(name)]; ok {
		return e
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil
	}
	for _, e := range all {
		if e.enc == enc {
			return e
		}
	}
	return nil
}
