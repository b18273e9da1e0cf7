package encoder

import (
	"bytes"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/decoder"
)

func bitsOf(values ...[2]int) *bitutil.BitArray {
	a := bitutil.NewBitArray(0)
	for _, v := range values {
		a.AppendBits(uint32(v[0]), v[1])
	}
	return a
}

func TestChooseMode(t *testing.T) {
	cases := []struct {
		content string
		enc     *charset.ECI
		want    decoder.Mode
	}{
		{"0", charset.ISO8859_1, decoder.ModeNumeric},
		{"0123456789", charset.ISO8859_1, decoder.ModeNumeric},
		{"A", charset.ISO8859_1, decoder.ModeAlphanumeric},
		{"AB12 $%*+-./:", charset.ISO8859_1, decoder.ModeAlphanumeric},
		{"a", charset.ISO8859_1, decoder.ModeByte},
		{"#", charset.ISO8859_1, decoder.ModeByte},
		{"", charset.ISO8859_1, decoder.ModeByte},
		{"点", charset.ShiftJIS, decoder.ModeKanji},
		{"点", charset.UTF8, decoder.ModeByte},
		{"点a", charset.ShiftJIS, decoder.ModeByte},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ChooseMode(c.content, c.enc), "%q in %s", c.content, c.enc)
	}
}

func TestAppendNumeric(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	appendNumeric("12345", bits)
	assert.True(t, bits.Equals(bitsOf([2]int{123, 10}, [2]int{45, 7})), bits.String())

	bits = bitutil.NewBitArray(0)
	appendNumeric("1", bits)
	assert.True(t, bits.Equals(bitsOf([2]int{1, 4})))
}

func TestAppendAlphanumeric(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	require.NoError(t, appendAlphanumeric("AB1", bits))
	assert.True(t, bits.Equals(bitsOf([2]int{10*45 + 11, 11}, [2]int{1, 6})))

	assert.ErrorIs(t, appendAlphanumeric("a", bitutil.NewBitArray(0)), qrcode.ErrWriter)
}

func TestAppendKanji(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	n, err := appendKanji("点", bits)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, " .XX.XX.. XXXXX", bits.String())
}

func TestTerminate(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	require.NoError(t, terminate(bits, 0))
	assert.Equal(t, 0, bits.Size())

	bits = bitutil.NewBitArray(0)
	require.NoError(t, terminate(bits, 3))
	assert.True(t, bits.Equals(bitsOf([2]int{0, 8}, [2]int{0xEC, 8}, [2]int{0x11, 8})))

	bits = bitsOf([2]int{0, 3})
	require.NoError(t, terminate(bits, 1))
	assert.Equal(t, 8, bits.Size())

	bits = bitsOf([2]int{0, 9})
	assert.ErrorIs(t, terminate(bits, 1), qrcode.ErrWriter)
}

func TestEncodeChoosesSmallestVersion(t *testing.T) {
	code, err := Encode("HELLO WORLD", &qrcode.EncodeOptions{ErrorCorrection: "Q"})
	require.NoError(t, err)
	assert.Equal(t, decoder.ModeAlphanumeric, code.Mode)
	assert.Equal(t, decoder.ECLevelQ, code.ECLevel)
	assert.Equal(t, 1, code.Version.Number)
	assert.Equal(t, 21, code.Matrix.Width())
	assert.GreaterOrEqual(t, code.MaskPattern, 0)
	assert.Less(t, code.MaskPattern, 8)
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			assert.False(t, code.Matrix.IsEmpty(x, y), "(%d,%d)", x, y)
		}
	}
	assert.Contains(t, code.String(), "mode: ALPHANUMERIC, ecLevel: Q, version: 1")
}

func TestEncodeRoundTrip(t *testing.T) {
	cases := []struct {
		content string
		opts    *qrcode.EncodeOptions
		mode    decoder.Mode
	}{
		{"1234567890", nil, decoder.ModeNumeric},
		{"HELLO WORLD", &qrcode.EncodeOptions{ErrorCorrection: "H"}, decoder.ModeAlphanumeric},
		{"Hello, World! This is a test.", &qrcode.EncodeOptions{ErrorCorrection: "m"}, decoder.ModeByte},
		{"café", nil, decoder.ModeByte},
		{"imagemagick的命令convert可以完成此任务", &qrcode.EncodeOptions{ErrorCorrection: "Q"}, decoder.ModeByte},
		{"点字", &qrcode.EncodeOptions{CharacterSet: "Shift_JIS"}, decoder.ModeKanji},
	}
	dec := decoder.NewDecoder()
	for _, c := range cases {
		t.Run(c.content, func(t *testing.T) {
			code, err := Encode(c.content, c.opts)
			require.NoError(t, err)
			assert.Equal(t, c.mode, code.Mode)
			res, err := dec.Decode(code.ToBitMatrix(), nil)
			require.NoError(t, err)
			assert.Equal(t, c.content, res.Text)
			assert.Equal(t, code.ECLevel.String(), res.ECLevel)
		})
	}
}

func TestEncodeECIHeader(t *testing.T) {
	code, err := Encode("Ж", nil)
	require.NoError(t, err)
	raw := make([]byte, 1)
	data := dataBits(t, code)
	data.ToBytes(0, raw, 0, 1)
	// ECI indicator, then the UTF-8 designator.
	assert.Equal(t, byte(0x70|26>>4), raw[0])

	code, err = Encode("é", nil)
	require.NoError(t, err)
	data = dataBits(t, code)
	data.ToBytes(0, raw, 0, 1)
	assert.Equal(t, byte(0x40), raw[0]&0xF0, "ISO-8859-1 needs no ECI")
}

// dataBits reads the codewords back out of a symbol's matrix.
func dataBits(t *testing.T, code *QRCode) *bitutil.BitArray {
	t.Helper()
	p, err := decoder.NewBitMatrixParser(code.ToBitMatrix())
	require.NoError(t, err)
	cw, err := p.ReadCodewords()
	require.NoError(t, err)
	out := bitutil.NewBitArray(0)
	for _, b := range cw {
		out.AppendBits(uint32(b), 8)
	}
	return out
}

func TestEncodeForcedVersionAndMask(t *testing.T) {
	mask := 5
	code, err := Encode("1", &qrcode.EncodeOptions{QRVersion: 7, MaskPattern: &mask})
	require.NoError(t, err)
	assert.Equal(t, 7, code.Version.Number)
	assert.Equal(t, 5, code.MaskPattern)
	assert.Equal(t, 45, code.Matrix.Width())

	res, err := decoder.NewDecoder().Decode(code.ToBitMatrix(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1", res.Text)
}

func TestEncodeErrors(t *testing.T) {
	bad := 8
	long := string(bytes.Repeat([]byte("x"), 100))
	cases := map[string]struct {
		content string
		opts    *qrcode.EncodeOptions
	}{
		"level":         {"x", &qrcode.EncodeOptions{ErrorCorrection: "Z"}},
		"charset":       {"x", &qrcode.EncodeOptions{CharacterSet: "no-such-set"}},
		"mask":          {"x", &qrcode.EncodeOptions{MaskPattern: &bad}},
		"version":       {"x", &qrcode.EncodeOptions{QRVersion: 41}},
		"too small":     {long, &qrcode.EncodeOptions{QRVersion: 1}},
		"unencodable":   {"Ж", &qrcode.EncodeOptions{CharacterSet: "ISO-8859-1"}},
		"over capacity": {string(bytes.Repeat([]byte("x"), 3000)), &qrcode.EncodeOptions{ErrorCorrection: "H"}},
	}
	for name, c := range cases {
		_, err := Encode(c.content, c.opts)
		assert.ErrorIs(t, err, qrcode.ErrWriter, name)
	}
}

func TestMaskPenaltyRules(t *testing.T) {
	row := func(cells ...int8) *ByteMatrix {
		m := NewByteMatrix(len(cells), 1)
		for x, v := range cells {
			m.Set(x, 0, v)
		}
		return m
	}
	assert.Equal(t, 0, penaltyRule1(row(0, 0, 0, 0)))
	assert.Equal(t, 3, penaltyRule1(row(0, 0, 0, 0, 0, 1)))
	assert.Equal(t, 4, penaltyRule1(row(0, 0, 0, 0, 0, 0, 1)))

	square := NewByteMatrix(3, 3)
	square.Clear(0)
	assert.Equal(t, 12, penaltyRule2(square))
	square.Set(1, 1, 1)
	assert.Equal(t, 0, penaltyRule2(square))

	assert.Equal(t, 40, penaltyRule3(row(0, 0, 0, 0, 1, 0, 1, 1, 1, 0, 1)))
	assert.Equal(t, 40, penaltyRule3(row(1, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0)))
	assert.Equal(t, 0, penaltyRule3(row(1, 0, 1, 1, 1, 0, 1)))

	assert.Equal(t, 0, penaltyRule4(row(0, 1)))
	assert.Equal(t, 30, penaltyRule4(row(0, 1, 1, 1, 1, 0)))
}

func TestRenderResult(t *testing.T) {
	code, err := Encode("HELLO", nil)
	require.NoError(t, err)

	plain := RenderResult(code, 0, 0, 0)
	assert.True(t, plain.Equals(code.ToBitMatrix()))

	out := RenderResult(code, 100, 100, qrcode.DefaultMargin)
	assert.Equal(t, 100, out.Width())
	// 29 modules fit three times in 100 pixels: offset (100-63)/2.
	assert.True(t, out.Get(18, 18))
	assert.True(t, out.Get(20, 20))
	assert.False(t, out.Get(17, 17))
}

func TestOptionsPixelSize(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, 3, o.PixelSize(21))
	o.Size = 100
	assert.Equal(t, MaxImageSize/29, o.PixelSize(21))
	o.Size = 0
	assert.Equal(t, 1, o.PixelSize(177))
}

func TestOptionsWrite(t *testing.T) {
	for _, name := range []string{"png", "jpg", "bmp"} {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			o.Size = 4
			f, err := ParseFormat(name)
			require.NoError(t, err)
			o.Format = f

			var buf bytes.Buffer
			require.NoError(t, o.Write(&buf, "HELLO"))
			img, err := imaging.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, (21+8)*4, img.Bounds().Dx())
			assert.Equal(t, (21+8)*4, img.Bounds().Dy())
		})
	}
	_, err := ParseFormat("gif")
	assert.ErrorIs(t, err, qrcode.ErrUnsupported)
}
