// Package internal holds result types shared by the decoder, detector and
// reader packages.
package internal

// DecoderResult is what the codeword decoder extracts from a module grid.
type DecoderResult struct {
	RawBytes        []byte
	NumBits         int
	Text            string
	ByteSegments    [][]byte
	ECLevel         string
	ErrorsCorrected int
	Erasures        int

	// Other carries decoder specific data, such as mirror metadata.
	Other any

	StructuredAppendParity         int
	StructuredAppendSequenceNumber int
	SymbologyModifier              int
}

// NewDecoderResult fills in the common fields. Structured append fields
// are -1 until set.
func NewDecoderResult(rawBytes []byte, text string, byteSegments [][]byte, ecLevel string) *DecoderResult {
	return &DecoderResult{
		RawBytes:                       rawBytes,
		NumBits:                        8 * len(rawBytes),
		Text:                           text,
		ByteSegments:                   byteSegments,
		ECLevel:                        ecLevel,
		StructuredAppendParity:         -1,
		StructuredAppendSequenceNumber: -1,
	}
}

func (d *DecoderResult) HasStructuredAppend() bool {
	return d.StructuredAppendParity >= 0 && d.StructuredAppendSequenceNumber >= 0
}
