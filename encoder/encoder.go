// Package encoder builds QR Code symbols. It is the producer the decoder
// round-trips against and backs the qr.Writer and the qrscan encode
// command.
package encoder

import (
	"fmt"
	"math"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/decoder"
	"github.com/coco-projects/qrcode/reedsolomon"
)

const numMaskPatterns = 8

// DefaultCharset is the byte mode charset that needs no ECI.
var DefaultCharset = charset.ISO8859_1

// QRCode is an encoded symbol.
type QRCode struct {
	Mode        decoder.Mode
	ECLevel     decoder.ErrorCorrectionLevel
	Version     *decoder.Version
	MaskPattern int
	Matrix      *ByteMatrix
}

// ToBitMatrix returns the symbol without a quiet zone, one bit per module.
func (c *QRCode) ToBitMatrix() *bitutil.BitMatrix { return c.Matrix.ToBitMatrix() }

func (c *QRCode) String() string {
	return fmt.Sprintf("mode: %s, ecLevel: %s, version: %d, maskPattern: %d\n%s",
		c.Mode, c.ECLevel, c.Version.Number, c.MaskPattern, c.Matrix)
}

// Encode builds the smallest symbol that holds content at the requested
// level, unless opts forces a version or mask.
func Encode(content string, opts *qrcode.EncodeOptions) (*QRCode, error) {
	if opts == nil {
		opts = &qrcode.EncodeOptions{}
	}
	level := decoder.ECLevelL
	if opts.ErrorCorrection != "" {
		l, err := decoder.ParseECLevel(opts.ErrorCorrection)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", qrcode.ErrWriter, err)
		}
		level = l
	}

	enc, err := byteCharset(content, opts.CharacterSet)
	if err != nil {
		return nil, err
	}
	mode := ChooseMode(content, enc)

	header := bitutil.NewBitArray(0)
	if mode == decoder.ModeByte && enc != DefaultCharset {
		header.AppendBits(uint32(decoder.ModeECI.Bits()), 4)
		header.AppendBits(uint32(enc.Value), 8)
	}
	header.AppendBits(uint32(mode.Bits()), 4)

	data := bitutil.NewBitArray(0)
	count, err := appendData(content, mode, enc, data)
	if err != nil {
		return nil, err
	}

	version, err := pickVersion(opts.QRVersion, mode, header.Size()+data.Size(), level)
	if err != nil {
		return nil, err
	}
	countBits := mode.CharacterCountBits(version)
	if count >= 1<<countBits {
		return nil, fmt.Errorf("%w: %d characters overflow a %d bit count", qrcode.ErrWriter, count, countBits)
	}

	bits := header
	bits.AppendBits(uint32(count), countBits)
	bits.AppendBitArray(data)

	ecb := version.ECBlocksForLevel(level)
	if err := terminate(bits, ecb.DataCodewords()); err != nil {
		return nil, err
	}
	final, err := interleave(bits, version, ecb)
	if err != nil {
		return nil, err
	}

	code := &QRCode{Mode: mode, ECLevel: level, Version: version}
	dim := version.Dimension()
	code.Matrix = NewByteMatrix(dim, dim)
	if opts.MaskPattern != nil {
		if *opts.MaskPattern < 0 || *opts.MaskPattern >= numMaskPatterns {
			return nil, fmt.Errorf("%w: mask pattern %d", qrcode.ErrWriter, *opts.MaskPattern)
		}
		code.MaskPattern = *opts.MaskPattern
	} else if code.MaskPattern, err = bestMask(final, level, version, code.Matrix); err != nil {
		return nil, err
	}
	if err := buildMatrix(final, level, version, code.MaskPattern, code.Matrix); err != nil {
		return nil, err
	}
	return code, nil
}

// byteCharset resolves the charset for byte segments: the named one, or
// ISO-8859-1 when it can hold content and UTF-8 otherwise.
func byteCharset(content, name string) (*charset.ECI, error) {
	if name == "" {
		if charset.CanEncode(content, DefaultCharset) {
			return DefaultCharset, nil
		}
		return charset.UTF8, nil
	}
	enc := charset.ECIByName(name)
	if enc == nil {
		return nil, fmt.Errorf("%w: unknown character set %q", qrcode.ErrWriter, name)
	}
	return enc, nil
}

// pickVersion returns the forced version if the data fits in it, or the
// smallest version that fits.
func pickVersion(forced int, mode decoder.Mode, bits int, level decoder.ErrorCorrectionLevel) (*decoder.Version, error) {
	fits := func(v *decoder.Version) bool {
		return bits+mode.CharacterCountBits(v) <= 8*v.ECBlocksForLevel(level).DataCodewords()
	}
	if forced > 0 {
		v, err := decoder.VersionForNumber(forced)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", qrcode.ErrWriter, err)
		}
		if !fits(v) {
			return nil, fmt.Errorf("%w: data does not fit version %d-%s", qrcode.ErrWriter, forced, level)
		}
		return v, nil
	}
	for n := 1; n <= 40; n++ {
		v, _ := decoder.VersionForNumber(n)
		if fits(v) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: data too large for any version at level %s", qrcode.ErrWriter, level)
}

// terminate appends up to four terminator bits, pads to a byte boundary and
// fills the remaining capacity with the alternating 0xEC 0x11 pad bytes.
func terminate(bits *bitutil.BitArray, dataBytes int) error {
	capacity := 8 * dataBytes
	if bits.Size() > capacity {
		return fmt.Errorf("%w: %d bits exceed capacity %d", qrcode.ErrWriter, bits.Size(), capacity)
	}
	for i := 0; i < 4 && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}
	if r := bits.Size() % 8; r != 0 {
		bits.AppendBits(0, 8-r)
	}
	for i := 0; bits.SizeInBytes() < dataBytes; i++ {
		pad := uint32(0xEC)
		if i%2 == 1 {
			pad = 0x11
		}
		bits.AppendBits(pad, 8)
	}
	return nil
}

type block struct {
	data []byte
	ec   []byte
}

// interleave splits the data codewords into the version's blocks, computes
// each block's error correction, and interleaves data then error
// correction codewords column by column.
func interleave(bits *bitutil.BitArray, v *decoder.Version, ecb *decoder.ECBlocks) (*bitutil.BitArray, error) {
	if bits.SizeInBytes() != ecb.DataCodewords() {
		return nil, fmt.Errorf("%w: %d data bytes, want %d", qrcode.ErrWriter, bits.SizeInBytes(), ecb.DataCodewords())
	}
	rs := reedsolomon.NewEncoder(reedsolomon.QRCodeField256())
	blocks := make([]block, 0, ecb.NumBlocks())
	offset, maxData := 0, 0
	for _, g := range ecb.Blocks {
		for i := 0; i < g.Count; i++ {
			data := make([]byte, g.DataCodewords)
			bits.ToBytes(8*offset, data, 0, len(data))
			offset += len(data)
			ec, err := ecBytes(rs, data, ecb.ECCodewordsPerBlock)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block{data: data, ec: ec})
			maxData = max(maxData, len(data))
		}
	}

	out := bitutil.NewBitArray(0)
	for i := 0; i < maxData; i++ {
		for _, b := range blocks {
			if i < len(b.data) {
				out.AppendBits(uint32(b.data[i]), 8)
			}
		}
	}
	for i := 0; i < ecb.ECCodewordsPerBlock; i++ {
		for _, b := range blocks {
			out.AppendBits(uint32(b.ec[i]), 8)
		}
	}
	if out.SizeInBytes() != v.TotalCodewords {
		return nil, fmt.Errorf("%w: interleaved %d codewords, version %d holds %d",
			qrcode.ErrWriter, out.SizeInBytes(), v.Number, v.TotalCodewords)
	}
	return out, nil
}

func ecBytes(rs *reedsolomon.Encoder, data []byte, n int) ([]byte, error) {
	cw := make([]int, len(data)+n)
	for i, b := range data {
		cw[i] = int(b)
	}
	if err := rs.Encode(cw, n); err != nil {
		return nil, fmt.Errorf("%w: %w", qrcode.ErrWriter, err)
	}
	ec := make([]byte, n)
	for i := range ec {
		ec[i] = byte(cw[len(data)+i])
	}
	return ec, nil
}

func bestMask(bits *bitutil.BitArray, level decoder.ErrorCorrectionLevel, v *decoder.Version, m *ByteMatrix) (int, error) {
	best, bestPenalty := 0, math.MaxInt
	for mask := 0; mask < numMaskPatterns; mask++ {
		if err := buildMatrix(bits, level, v, mask, m); err != nil {
			return 0, err
		}
		if p := maskPenalty(m); p < bestPenalty {
			best, bestPenalty = mask, p
		}
	}
	return best, nil
}
