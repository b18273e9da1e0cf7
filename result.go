package qrcode

import "time"

// MetadataKey names an optional fact about a decoded symbol.
type MetadataKey int

const (
	// MetadataByteSegments holds the raw bytes of each byte-mode segment
	// as [][]byte.
	MetadataByteSegments MetadataKey = iota
	// MetadataErrorCorrectionLevel holds "L", "M", "Q" or "H".
	MetadataErrorCorrectionLevel
	// MetadataErrorsCorrected holds the number of codewords repaired.
	MetadataErrorsCorrected
	MetadataErasuresCorrected
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
	// MetadataSymbologyIdentifier holds the AIM identifier, e.g. "]Q1".
	MetadataSymbologyIdentifier
	// MetadataMirrored is true when the symbol was read transposed.
	MetadataMirrored
)

var metadataNames = [...]string{
	"byte_segments",
	"error_correction_level",
	"errors_corrected",
	"erasures_corrected",
	"structured_append_sequence",
	"structured_append_parity",
	"symbology_identifier",
	"mirrored",
}

func (k MetadataKey) String() string {
	if k < 0 || int(k) >= len(metadataNames) {
		return "unknown"
	}
	return metadataNames[k]
}

// Result is a decoded symbol.
type Result struct {
	Text      string
	RawBytes  []byte
	NumBits   int
	Points    []ResultPoint
	Metadata  map[MetadataKey]any
	Timestamp time.Time
}

func NewResult(text string, rawBytes []byte, numBits int, points []ResultPoint) *Result {
	return &Result{
		Text:      text,
		RawBytes:  rawBytes,
		NumBits:   numBits,
		Points:    points,
		Metadata:  make(map[MetadataKey]any),
		Timestamp: time.Now(),
	}
}

func (r *Result) PutMetadata(key MetadataKey, value any) {
	r.Metadata[key] = value
}

// Int returns an integer metadata value and whether it was present.
func (r *Result) Int(key MetadataKey) (int, bool) {
	v, ok := r.Metadata[key].(int)
	return v, ok
}

// String returns a string metadata value, or "" when absent.
func (r *Result) String(key MetadataKey) string {
	v, _ := r.Metadata[key].(string)
	return v
}
