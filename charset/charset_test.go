package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECIByValue(t *testing.T) {
	cases := map[int]*ECI{
		0: Cp437, 2: Cp437, 1: ISO8859_1, 3: ISO8859_1, 20: ShiftJIS,
		26: UTF8, 27: ASCII, 170: ASCII, 29: GB18030, 30: EUCKR,
	}
	for v, want := range cases {
		got, err := ECIByValue(v)
		require.NoError(t, err, "value %d", v)
		assert.Same(t, want, got, "value %d", v)
	}
	_, err := ECIByValue(-1)
	assert.ErrorIs(t, err, ErrInvalidECI)
	_, err = ECIByValue(1000000)
	assert.ErrorIs(t, err, ErrInvalidECI)
	_, err = ECIByValue(899)
	assert.ErrorIs(t, err, ErrInvalidECI)
}

func TestECIByName(t *testing.T) {
	assert.Same(t, ShiftJIS, ECIByName("SJIS"))
	assert.Same(t, ShiftJIS, ECIByName("shift_jis"))
	assert.Same(t, ISO8859_1, ECIByName("ISO-8859-1"))
	assert.Same(t, ISO8859_5, ECIByName("ISO8859_5"))
	assert.Same(t, UTF8, ECIByName("utf-8"))
	assert.Same(t, GB18030, ECIByName("GBK"))
	assert.Nil(t, ECIByName("no-such-charset"))
	assert.Equal(t, "windows-1251", Cp1251.String())
}

func TestDecodeEncode(t *testing.T) {
	cases := []struct {
		eci  *ECI
		text string
	}{
		{ISO8859_1, "Grüße"},
		{ShiftJIS, "こんにちは"},
		{GB18030, "中文"},
		{Big5, "中文"},
		{EUCKR, "한국어"},
		{Cp1251, "Привет"},
		{UTF16BE, "héllo"},
		{UTF8, "ünïcødé"},
		{ASCII, "plain"},
	}
	for _, c := range cases {
		raw, err := Encode(c.text, c.eci)
		require.NoError(t, err, c.eci.Name)
		back, err := Decode(raw, c.eci)
		require.NoError(t, err, c.eci.Name)
		assert.Equal(t, c.text, back, c.eci.Name)
	}

	raw, err := Encode("é", ISO8859_1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE9}, raw)

	assert.False(t, CanEncode("é", ASCII))
	assert.False(t, CanEncode("日本", ISO8859_1))
	assert.True(t, CanEncode("日本", ShiftJIS))
}

func TestGuessEncoding(t *testing.T) {
	assert.Same(t, Cp1252, GuessEncoding([]byte("anything"), Cp1252))
	assert.Same(t, ISO8859_1, GuessEncoding([]byte("hello"), nil))
	assert.Same(t, UTF8, GuessEncoding([]byte("héllo wörld"), nil))
	assert.Same(t, ISO8859_1, GuessEncoding([]byte{'c', 'a', 'f', 0xE9}, nil))

	sjis, err := Encode("こんにちは", ShiftJIS)
	require.NoError(t, err)
	assert.Same(t, ShiftJIS, GuessEncoding(sjis, nil))

	assert.Same(t, UTF16BE, GuessEncoding([]byte{0xFE, 0xFF, 0x00, 0x41}, nil))
	s, err := Decode([]byte{0xFE, 0xFF, 0x00, 0x41}, UTF16BE)
	require.NoError(t, err)
	assert.Equal(t, "A", s)
}
