package decoder

import (
	"fmt"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

// BitMatrixParser reads format information, version and codewords out of a
// sampled symbol. It unmasks the matrix in place while reading codewords.
type BitMatrixParser struct {
	bits       *bitutil.BitMatrix
	version    *Version
	formatInfo *FormatInformation
	mirror     bool
	unmasked   bool
}

// NewBitMatrixParser checks that bits is square-sized for some version:
// at least 21 modules and one more than a multiple of four.
func NewBitMatrixParser(bits *bitutil.BitMatrix) (*BitMatrixParser, error) {
	dim := bits.Height()
	if dim < 21 || dim%4 != 1 || bits.Width() != dim {
		return nil, fmt.Errorf("%w: %dx%d is not a symbol size", qrcode.ErrFormat, bits.Width(), dim)
	}
	return &BitMatrixParser{bits: bits}, nil
}

// bit reads module (i, j), transposed when reading a mirrored symbol.
func (p *BitMatrixParser) bit(i, j int) bool {
	if p.mirror {
		return p.bits.Get(j, i)
	}
	return p.bits.Get(i, j)
}

func (p *BitMatrixParser) appendBit(acc, i, j int) int {
	acc <<= 1
	if p.bit(i, j) {
		acc |= 1
	}
	return acc
}

// ReadFormatInformation decodes the format information from its copy
// around the top-left finder and its copy split between the other two.
func (p *BitMatrixParser) ReadFormatInformation() (*FormatInformation, error) {
	if p.formatInfo != nil {
		return p.formatInfo, nil
	}
	first := 0
	for i := 0; i < 6; i++ {
		first = p.appendBit(first, i, 8)
	}
	first = p.appendBit(first, 7, 8)
	first = p.appendBit(first, 8, 8)
	first = p.appendBit(first, 8, 7)
	for j := 5; j >= 0; j-- {
		first = p.appendBit(first, 8, j)
	}

	dim := p.bits.Height()
	second := 0
	for j := dim - 1; j >= dim-7; j-- {
		second = p.appendBit(second, 8, j)
	}
	for i := dim - 8; i < dim; i++ {
		second = p.appendBit(second, i, 8)
	}

	fi, err := DecodeFormatInformation(first, second)
	if err != nil {
		return nil, err
	}
	p.formatInfo = fi
	return fi, nil
}

// ReadVersion derives the version from the dimension and, from version 7,
// checks it against either version information block.
func (p *BitMatrixParser) ReadVersion() (*Version, error) {
	if p.version != nil {
		return p.version, nil
	}
	dim := p.bits.Height()
	provisional := (dim - 17) / 4
	if provisional <= 6 {
		v, err := VersionForNumber(provisional)
		if err != nil {
			return nil, err
		}
		p.version = v
		return v, nil
	}

	// Top-right block is 3 wide and 6 tall.
	topRight := 0
	for j := 5; j >= 0; j-- {
		for i := dim - 9; i >= dim-11; i-- {
			topRight = p.appendBit(topRight, i, j)
		}
	}
	if v, err := DecodeVersionInformation(topRight); err == nil && v.Dimension() == dim {
		p.version = v
		return v, nil
	}

	bottomLeft := 0
	for i := 5; i >= 0; i-- {
		for j := dim - 9; j >= dim-11; j-- {
			bottomLeft = p.appendBit(bottomLeft, i, j)
		}
	}
	v, err := DecodeVersionInformation(bottomLeft)
	if err != nil {
		return nil, err
	}
	if v.Dimension() != dim {
		return nil, fmt.Errorf("%w: version %d does not fit %d modules", qrcode.ErrFormat, v.Number, dim)
	}
	p.version = v
	return v, nil
}

// ReadCodewords unmasks the symbol and reads its codewords. Modules are
// taken in two-column strips from the right edge, moving up and down in
// turn, skipping the vertical timing column and every function module.
func (p *BitMatrixParser) ReadCodewords() ([]byte, error) {
	fi, err := p.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	v, err := p.ReadVersion()
	if err != nil {
		return nil, err
	}

	dim := p.bits.Height()
	UnmaskBitMatrix(p.bits, dim, fi.DataMask)
	p.unmasked = true
	function := v.BuildFunctionPattern()

	out := make([]byte, 0, v.TotalCodewords)
	cur, n := 0, 0
	up := true
	for right := dim - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for k := 0; k < dim; k++ {
			y := k
			if up {
				y = dim - 1 - k
			}
			for x := right; x > right-2; x-- {
				if function.Get(x, y) {
					continue
				}
				cur <<= 1
				if p.bits.Get(x, y) {
					cur |= 1
				}
				if n++; n == 8 {
					out = append(out, byte(cur))
					cur, n = 0, 0
				}
			}
		}
		up = !up
	}
	if len(out) != v.TotalCodewords {
		return nil, fmt.Errorf("%w: read %d codewords, version %d holds %d",
			qrcode.ErrFormat, len(out), v.Number, v.TotalCodewords)
	}
	return out, nil
}

// Remask undoes the unmasking done by ReadCodewords, if any.
func (p *BitMatrixParser) Remask() {
	if !p.unmasked {
		return
	}
	UnmaskBitMatrix(p.bits, p.bits.Height(), p.formatInfo.DataMask)
	p.unmasked = false
}

// SetMirror switches between normal and transposed reading of format and
// version information, forgetting what was parsed before.
func (p *BitMatrixParser) SetMirror(mirror bool) {
	p.version = nil
	p.formatInfo = nil
	p.mirror = mirror
}

// Mirror transposes the matrix about its main diagonal.
func (p *BitMatrixParser) Mirror() {
	for x := 0; x < p.bits.Width(); x++ {
		for y := x + 1; y < p.bits.Height(); y++ {
			if p.bits.Get(x, y) != p.bits.Get(y, x) {
				p.bits.Flip(y, x)
				p.bits.Flip(x, y)
			}
		}
	}
}
