package decoder

import (
	"fmt"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/charset"
	"github.com/coco-projects/qrcode/internal"
	"github.com/coco-projects/qrcode/reedsolomon"
)

// MetaData is attached to DecoderResult.Other when the symbol could only be
// read transposed.
type MetaData struct {
	Mirrored bool
}

// ApplyMirroredCorrection swaps the bottom-left and top-right finder points
// of a mirrored symbol so they describe the symbol as printed.
func (m *MetaData) ApplyMirroredCorrection(points []qrcode.ResultPoint) {
	if !m.Mirrored || len(points) < 3 {
		return
	}
	points[0], points[2] = points[2], points[0]
}

// Decoder turns a sampled module grid into a DecoderResult. It holds no
// per-decode state and is safe for concurrent use.
type Decoder struct {
	rs *reedsolomon.Decoder
}

func NewDecoder() *Decoder {
	return &Decoder{rs: reedsolomon.NewDecoder(reedsolomon.QRCodeField256())}
}

// Decode reads bits, one module per bit with set meaning dark. It tries
// the grid as given and then transposed; if both fail the first error is
// returned. bits is not modified.
func (d *Decoder) Decode(bits *bitutil.BitMatrix, opts *qrcode.DecodeOptions) (*internal.DecoderResult, error) {
	var hint *charset.ECI
	if name := opts.Charset(); name != "" {
		hint = charset.ECIByName(name)
	}

	parser, err := NewBitMatrixParser(bits.Clone())
	if err != nil {
		return nil, err
	}
	res, err := d.decode(parser, hint)
	if err == nil {
		return res, nil
	}

	parser.Remask()
	parser.SetMirror(true)
	if _, verr := parser.ReadVersion(); verr != nil {
		return nil, err
	}
	if _, ferr := parser.ReadFormatInformation(); ferr != nil {
		return nil, err
	}
	parser.Mirror()
	res, merr := d.decode(parser, hint)
	if merr != nil {
		return nil, err
	}
	res.Other = &MetaData{Mirrored: true}
	return res, nil
}

func (d *Decoder) decode(p *BitMatrixParser, hint *charset.ECI) (*internal.DecoderResult, error) {
	v, err := p.ReadVersion()
	if err != nil {
		return nil, err
	}
	fi, err := p.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	raw, err := p.ReadCodewords()
	if err != nil {
		return nil, err
	}
	blocks, err := DataBlocks(raw, v, fi.ECLevel)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, v.ECBlocksForLevel(fi.ECLevel).DataCodewords())
	corrected := 0
	for i, b := range blocks {
		n, err := d.correct(b)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", qrcode.ErrChecksum, i, err)
		}
		corrected += n
		data = append(data, b.Codewords[:b.NumDataCodewords]...)
	}

	res, err := DecodeBitStream(data, v, fi.ECLevel, hint)
	if err != nil {
		return nil, err
	}
	res.ErrorsCorrected = corrected
	return res, nil
}

// correct repairs b in place and returns the number of codewords fixed.
func (d *Decoder) correct(b DataBlock) (int, error) {
	cw := make([]int, len(b.Codewords))
	for i, c := range b.Codewords {
		cw[i] = int(c)
	}
	n, err := d.rs.Decode(cw, len(cw)-b.NumDataCodewords)
	if err != nil {
		return 0, err
	}
	for i := 0; i < b.NumDataCodewords; i++ {
		b.Codewords[i] = byte(cw[i])
	}
	return n, nil
}
