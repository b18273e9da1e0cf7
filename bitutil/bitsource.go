package bitutil

import "fmt"

// BitSource hands out bits from a byte slice in reads that need not be
// byte aligned. Bits come from the first byte first, most significant bit
// first. The cursor only moves forward.
type BitSource struct {
	bytes      []byte
	byteOffset int
	bitOffset  int
}

func NewBitSource(bytes []byte) *BitSource {
	return &BitSource{bytes: bytes}
}

// BitOffset is the index of the next bit within the current byte.
func (s *BitSource) BitOffset() int { return s.bitOffset }

// ByteOffset is the index of the byte holding the next bit.
func (s *BitSource) ByteOffset() int { return s.byteOffset }

// Available is the number of bits left to read.
func (s *BitSource) Available() int {
	return 8*(len(s.bytes)-s.byteOffset) - s.bitOffset
}

// ReadBits returns the next numBits bits as the low bits of an int. numBits
// must be in 1..32 and no larger than Available.
func (s *BitSource) ReadBits(numBits int) (int, error) {
	if numBits < 1 || numBits > 32 || numBits > s.Available() {
		return 0, fmt.Errorf("%w: want %d, have %d", ErrInsufficientBits, numBits, s.Available())
	}
	var result uint32
	for numBits > 0 {
		left := 8 - s.bitOffset
		take := min(numBits, left)
		drop := left - take
		chunk := uint32(s.bytes[s.byteOffset]>>uint(drop)) & (1<<uint(take) - 1)
		result = result<<uint(take) | chunk
		numBits -= take
		s.bitOffset += take
		if s.bitOffset == 8 {
			s.bitOffset = 0
			s.byteOffset++
		}
	}
	return int(result), nil
}
