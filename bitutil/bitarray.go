// Package bitutil holds the packed bit containers shared by every stage of
// the QR pipeline: a 1-D BitArray, the 2-D BitMatrix built from it, and a
// forward-only BitSource over decoded codewords.
package bitutil

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 32

// BitArray is a fixed-width vector of bits packed into uint32 words. Bit i
// lives in word i>>5 at position i&31.
type BitArray struct {
	words []uint32
	size  int
}

// NewBitArray returns a cleared array of size bits. A size below one gives
// an empty array that can still be grown with the Append methods.
func NewBitArray(size int) *BitArray {
	if size < 1 {
		return &BitArray{}
	}
	return &BitArray{words: wordsFor(size), size: size}
}

// NewBitArrayFromWords wraps existing words without copying them.
func NewBitArrayFromWords(words []uint32, size int) *BitArray {
	return &BitArray{words: words, size: size}
}

func wordsFor(size int) []uint32 {
	return make([]uint32, (size+wordBits-1)/wordBits)
}

// Size is the number of addressable bits.
func (a *BitArray) Size() int { return a.size }

// SizeInBytes is Size rounded up to whole bytes.
func (a *BitArray) SizeInBytes() int { return (a.size + 7) / 8 }

// Words exposes the backing words. Callers must not grow the slice.
func (a *BitArray) Words() []uint32 { return a.words }

func (a *BitArray) grow(size int) {
	if size <= len(a.words)*wordBits {
		return
	}
	// grow by a third so repeated appends amortize
	next := wordsFor(size + size/3)
	copy(next, a.words)
	a.words = next
}

func (a *BitArray) Get(i int) bool {
	return a.words[i>>5]&(1<<uint(i&31)) != 0
}

func (a *BitArray) Set(i int) {
	a.words[i>>5] |= 1 << uint(i&31)
}

func (a *BitArray) Flip(i int) {
	a.words[i>>5] ^= 1 << uint(i&31)
}

// SetBulk overwrites the whole word containing bit i.
func (a *BitArray) SetBulk(i int, word uint32) {
	a.words[i>>5] = word
}

// NextSet returns the index of the first set bit at or after from, or Size
// when there is none.
func (a *BitArray) NextSet(from int) int {
	return a.next(from, 0)
}

// NextUnset returns the index of the first clear bit at or after from, or
// Size when there is none.
func (a *BitArray) NextUnset(from int) int {
	return a.next(from, ^uint32(0))
}

// next scans for the first bit that differs from the pattern in invert.
func (a *BitArray) next(from int, invert uint32) int {
	if from >= a.size {
		return a.size
	}
	w := from >> 5
	cur := (a.words[w] ^ invert) & (^uint32(0) << uint(from&31))
	for cur == 0 {
		w++
		if w == len(a.words) {
			return a.size
		}
		cur = a.words[w] ^ invert
	}
	return min(w*wordBits+bits.TrailingZeros32(cur), a.size)
}

// rangeMask returns the mask of bits [lo, hi] inside one word.
func rangeMask(lo, hi int) uint32 {
	return uint32((uint64(2) << uint(hi)) - (uint64(1) << uint(lo)))
}

func (a *BitArray) checkRange(start, end int) error {
	if start < 0 || end < start || end > a.size {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidRange, start, end, a.size)
	}
	return nil
}

// SetRange sets bits [start, end).
func (a *BitArray) SetRange(start, end int) error {
	if err := a.checkRange(start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	last := end - 1
	for w := start >> 5; w <= last>>5; w++ {
		lo, hi := 0, 31
		if w == start>>5 {
			lo = start & 31
		}
		if w == last>>5 {
			hi = last & 31
		}
		a.words[w] |= rangeMask(lo, hi)
	}
	return nil
}

// IsRange reports whether every bit in [start, end) equals value.
func (a *BitArray) IsRange(start, end int, value bool) (bool, error) {
	if err := a.checkRange(start, end); err != nil {
		return false, err
	}
	if start == end {
		return true, nil
	}
	last := end - 1
	for w := start >> 5; w <= last>>5; w++ {
		lo, hi := 0, 31
		if w == start>>5 {
			lo = start & 31
		}
		if w == last>>5 {
			hi = last & 31
		}
		mask := rangeMask(lo, hi)
		want := uint32(0)
		if value {
			want = mask
		}
		if a.words[w]&mask != want {
			return false, nil
		}
	}
	return true, nil
}

func (a *BitArray) Clear() {
	clear(a.words)
}

func (a *BitArray) AppendBit(bit bool) {
	a.grow(a.size + 1)
	if bit {
		a.Set(a.size)
	}
	a.size++
}

// AppendBits appends the low numBits bits of value, most significant first.
// numBits outside 0..32 is a programming error.
func (a *BitArray) AppendBits(value uint32, numBits int) {
	if numBits < 0 || numBits > wordBits {
		panic(fmt.Sprintf("bitutil: cannot append %d bits", numBits))
	}
	a.grow(a.size + numBits)
	for n := numBits - 1; n >= 0; n-- {
		if value&(1<<uint(n)) != 0 {
			a.Set(a.size)
		}
		a.size++
	}
}

func (a *BitArray) AppendBitArray(other *BitArray) {
	a.grow(a.size + other.size)
	for i := 0; i < other.size; i++ {
		a.AppendBit(other.Get(i))
	}
}

// Xor flips every bit of a that is set in other.
func (a *BitArray) Xor(other *BitArray) error {
	if a.size != other.size {
		return fmt.Errorf("%w: %d bits vs %d bits", ErrDimensionMismatch, a.size, other.size)
	}
	for i := range a.words {
		a.words[i] ^= other.words[i]
	}
	return nil
}

// ToBytes packs numBytes bytes MSB-first, starting at bitOffset, into
// dst[offset:].
func (a *BitArray) ToBytes(bitOffset int, dst []byte, offset, numBytes int) {
	for i := 0; i < numBytes; i++ {
		var b byte
		for j := 7; j >= 0; j-- {
			if a.Get(bitOffset) {
				b |= 1 << uint(j)
			}
			bitOffset++
		}
		dst[offset+i] = b
	}
}

// Reverse mirrors the array so bit i moves to Size-1-i.
func (a *BitArray) Reverse() {
	if a.size == 0 {
		return
	}
	n := (a.size-1)/wordBits + 1
	out := make([]uint32, len(a.words))
	for i := 0; i < n; i++ {
		out[n-1-i] = bits.Reverse32(a.words[i])
	}
	if shift := uint(n*wordBits - a.size); shift != 0 {
		for i := 0; i < n; i++ {
			out[i] >>= shift
			if i+1 < n {
				out[i] |= out[i+1] << (wordBits - shift)
			}
		}
	}
	a.words = out
}

func (a *BitArray) Clone() *BitArray {
	w := make([]uint32, len(a.words))
	copy(w, a.words)
	return &BitArray{words: w, size: a.size}
}

// Equals compares size and bits.
func (a *BitArray) Equals(other *BitArray) bool {
	if other == nil || a.size != other.size {
		return false
	}
	for i := 0; i < (a.size+wordBits-1)/wordBits; i++ {
		if a.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// String renders set bits as 'X' and clear bits as '.', with a space before
// every byte.
func (a *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(a.size + a.size/8 + 1)
	for i := 0; i < a.size; i++ {
		if i%8 == 0 {
			sb.WriteByte(' ')
		}
		if a.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
