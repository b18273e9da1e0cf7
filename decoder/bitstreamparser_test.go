package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
)

// stream packs (value, width) pairs into bytes, zero padded.
func stream(fields ...int) []byte {
	a := bitutil.NewBitArray(0)
	for i := 0; i < len(fields); i += 2 {
		a.AppendBits(uint32(fields[i]), fields[i+1])
	}
	if r := a.Size() % 8; r != 0 {
		a.AppendBits(0, 8-r)
	}
	out := make([]byte, a.SizeInBytes())
	a.ToBytes(0, out, 0, len(out))
	return out
}

func decodeStream(t *testing.T, data []byte) string {
	t.Helper()
	v, err := VersionForNumber(1)
	require.NoError(t, err)
	res, err := DecodeBitStream(data, v, ECLevelM, nil)
	require.NoError(t, err)
	return res.Text
}

func TestDecodeNumeric(t *testing.T) {
	data := stream(0x1, 4, 8, 10, 12, 10, 345, 10, 67, 7)
	assert.Equal(t, "01234567", decodeStream(t, data))
}

func TestDecodeNumericInvalidGroup(t *testing.T) {
	v, _ := VersionForNumber(1)
	_, err := DecodeBitStream(stream(0x1, 4, 3, 10, 1000, 10), v, ECLevelM, nil)
	assert.ErrorIs(t, err, qrcode.ErrFormat)
}

func TestDecodeAlphanumeric(t *testing.T) {
	data := stream(0x2, 4, 3, 9, 10*45+11, 11, 36, 6)
	assert.Equal(t, "AB ", decodeStream(t, data))
}

func TestDecodeFNC1Alphanumeric(t *testing.T) {
	v, _ := VersionForNumber(1)
	// FNC1 first position, then "A%B%%" in alphanumeric mode.
	data := stream(0x5, 4, 0x2, 4, 5, 9, 10*45+38, 11, 11*45+38, 11, 38, 6)
	res, err := DecodeBitStream(data, v, ECLevelM, nil)
	require.NoError(t, err)
	assert.Equal(t, "A\x1dB%", res.Text)
	assert.Equal(t, 3, res.SymbologyModifier)
}

func TestDecodeECIByte(t *testing.T) {
	v, _ := VersionForNumber(1)
	data := stream(0x7, 4, 26, 8, 0x4, 4, 2, 8, 0xC3, 8, 0xA9, 8)
	res, err := DecodeBitStream(data, v, ECLevelL, nil)
	require.NoError(t, err)
	assert.Equal(t, "é", res.Text)
	assert.Equal(t, [][]byte{{0xC3, 0xA9}}, res.ByteSegments)
	assert.Equal(t, 2, res.SymbologyModifier)
	assert.Equal(t, "L", res.ECLevel)
}

func TestDecodeUnknownECI(t *testing.T) {
	v, _ := VersionForNumber(1)
	_, err := DecodeBitStream(stream(0x7, 4, 0x7F, 8), v, ECLevelL, nil)
	assert.ErrorIs(t, err, qrcode.ErrFormat)
}

func TestDecodeByteHint(t *testing.T) {
	v, _ := VersionForNumber(1)
	data := stream(0x4, 4, 3, 8, 0x93, 8, 0x5F, 8, 'a', 8)
	res, err := DecodeBitStream(data, v, ECLevelM, charset.ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "点a", res.Text)
	assert.Equal(t, 1, res.SymbologyModifier)
}

func TestDecodeStructuredAppend(t *testing.T) {
	v, _ := VersionForNumber(1)
	data := stream(0x3, 4, 0x21, 8, 0x5A, 8, 0x1, 4, 1, 10, 7, 4)
	res, err := DecodeBitStream(data, v, ECLevelM, nil)
	require.NoError(t, err)
	assert.Equal(t, "7", res.Text)
	assert.True(t, res.HasStructuredAppend())
	assert.Equal(t, 0x21, res.StructuredAppendSequenceNumber)
	assert.Equal(t, 0x5A, res.StructuredAppendParity)
	assert.Equal(t, 1, res.SymbologyModifier)
}

func TestDecodeKanji(t *testing.T) {
	// 点 is Shift_JIS 0x935F.
	data := stream(0x8, 4, 1, 8, 0x12*0xC0+0x1F, 13)
	assert.Equal(t, "点", decodeStream(t, data))
}

func TestDecodeHanzi(t *testing.T) {
	// 中 is GB2312 0xD6D0.
	data := stream(0xD, 4, gb2312Subset, 4, 1, 8, 0x30*0x60+0x2F, 13)
	assert.Equal(t, "中", decodeStream(t, data))
}

func TestDecodeStopsWithoutRoomForMode(t *testing.T) {
	// 21 bits of numeric segment leave three padding bits.
	data := stream(0x1, 4, 2, 10, 42, 7)
	require.Len(t, data, 3)
	assert.Equal(t, "42", decodeStream(t, data))
}

func TestDecodeTruncatedSegment(t *testing.T) {
	v, _ := VersionForNumber(1)
	data := stream(0x4, 4, 5, 8, 'a', 8, 'b', 8)
	res, err := DecodeBitStream(data, v, ECLevelM, nil)
	assert.ErrorIs(t, err, qrcode.ErrFormat)
	assert.Nil(t, res)
}

func TestDecodeInvalidMode(t *testing.T) {
	v, _ := VersionForNumber(1)
	_, err := DecodeBitStream(stream(0x6, 4), v, ECLevelM, nil)
	assert.ErrorIs(t, err, qrcode.ErrFormat)
}

func TestDecodeCharacterCountWidth(t *testing.T) {
	v10, _ := VersionForNumber(10)
	// Byte counts are 16 bits wide from version 10.
	data := stream(0x4, 4, 1, 16, 'z', 8)
	res, err := DecodeBitStream(data, v10, ECLevelM, nil)
	require.NoError(t, err)
	assert.Equal(t, "z", res.Text)
}
