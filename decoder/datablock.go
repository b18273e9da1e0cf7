package decoder

import (
	"fmt"

	qrcode "github.com/coco-projects/qrcode"
)

// DataBlock is one Reed–Solomon block: its data codewords followed by its
// error correction codewords.
type DataBlock struct {
	NumDataCodewords int
	Codewords        []byte
}

// DataBlocks undoes the interleaving of raw codewords. Data codewords are
// interleaved across blocks first, with the longer blocks (one extra data
// codeword) last, then error correction codewords the same way.
func DataBlocks(raw []byte, v *Version, level ErrorCorrectionLevel) ([]DataBlock, error) {
	if len(raw) != v.TotalCodewords {
		return nil, fmt.Errorf("%w: %d codewords for version %d, want %d",
			qrcode.ErrFormat, len(raw), v.Number, v.TotalCodewords)
	}
	ecb := v.ECBlocksForLevel(level)
	blocks := make([]DataBlock, 0, ecb.NumBlocks())
	for _, b := range ecb.Blocks {
		for i := 0; i < b.Count; i++ {
			blocks = append(blocks, DataBlock{
				NumDataCodewords: b.DataCodewords,
				Codewords:        make([]byte, b.DataCodewords+ecb.ECCodewordsPerBlock),
			})
		}
	}

	shortData := blocks[0].NumDataCodewords
	longFrom := len(blocks)
	for longFrom > 0 && blocks[longFrom-1].NumDataCodewords > shortData {
		longFrom--
	}

	next := 0
	take := func() byte {
		c := raw[next]
		next++
		return c
	}
	for i := 0; i < shortData; i++ {
		for j := range blocks {
			blocks[j].Codewords[i] = take()
		}
	}
	for j := longFrom; j < len(blocks); j++ {
		blocks[j].Codewords[shortData] = take()
	}
	for i := 0; i < ecb.ECCodewordsPerBlock; i++ {
		for j := range blocks {
			blocks[j].Codewords[blocks[j].NumDataCodewords+i] = take()
		}
	}
	return blocks, nil
}
