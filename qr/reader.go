// Package qr is the entry point for reading and writing QR Codes: Reader
// ties detection and decoding together, Writer renders encoded symbols.
package qr

import (
	"fmt"
	"math"
	"time"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/decoder"
	"github.com/coco-projects/qrcode/detector"
	"github.com/coco-projects/qrcode/metrics"
)

// Reader decodes QR Codes from binary images. It is safe for concurrent
// use.
type Reader struct {
	dec      *decoder.Decoder
	recorder *metrics.Recorder
}

func NewReader() *Reader {
	return &Reader{dec: decoder.NewDecoder()}
}

// WithRecorder makes r report every decode to rec.
func (r *Reader) WithRecorder(rec *metrics.Recorder) *Reader {
	r.recorder = rec
	return r
}

// Decode locates and decodes a symbol. Failures are *qrcode.DecodeError
// values matching one of qrcode.ErrNotFound, ErrFormat or ErrChecksum.
func (r *Reader) Decode(image *qrcode.BinaryBitmap, opts *qrcode.DecodeOptions) (*qrcode.Result, error) {
	start := time.Now()
	res, err := r.decode(image, opts)
	err = qrcode.Classify(err)
	r.observe(start, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DecodeMatrix decodes an already sampled module grid, one bit per module.
func (r *Reader) DecodeMatrix(bits *bitutil.BitMatrix, opts *qrcode.DecodeOptions) (*qrcode.Result, error) {
	start := time.Now()
	res, err := r.decodeBits(bits, nil, opts)
	err = qrcode.Classify(err)
	r.observe(start, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Reader) observe(start time.Time, res *qrcode.Result, err error) {
	corrected := 0
	if res != nil {
		corrected, _ = res.Int(qrcode.MetadataErrorsCorrected)
	}
	r.recorder.ObserveDecode(time.Since(start), corrected, err)
}

func (r *Reader) decode(image *qrcode.BinaryBitmap, opts *qrcode.DecodeOptions) (*qrcode.Result, error) {
	log := opts.Log()
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}
	res, err := r.decodeImage(matrix, opts)
	if err == nil || opts == nil {
		return res, err
	}

	if opts.TryHarder {
		log.Debug("retrying with the image rotated 180 degrees", "error", err)
		rotated := matrix.Clone()
		rotated.Rotate180()
		if res, rerr := r.decodeImage(rotated, opts); rerr == nil {
			return res, nil
		}
	}
	if opts.AlsoInverted {
		log.Debug("retrying with inverted binarization", "error", err)
		inverted := matrix.Clone()
		inverted.FlipAll()
		if res, ierr := r.decodeImage(inverted, opts); ierr == nil {
			return res, nil
		}
	}
	return nil, err
}

func (r *Reader) decodeImage(matrix *bitutil.BitMatrix, opts *qrcode.DecodeOptions) (*qrcode.Result, error) {
	if opts != nil && opts.PureBarcode {
		bits, err := extractPureBits(matrix)
		if err != nil {
			return nil, err
		}
		return r.decodeBits(bits, nil, opts)
	}
	det, err := detector.NewDetector(matrix).Detect(opts)
	if err != nil {
		return nil, err
	}
	return r.decodeBits(det.Bits, det.Points, opts)
}

func (r *Reader) decodeBits(bits *bitutil.BitMatrix, points []qrcode.ResultPoint, opts *qrcode.DecodeOptions) (*qrcode.Result, error) {
	dr, err := r.dec.Decode(bits, opts)
	if err != nil {
		return nil, err
	}
	mirrored := false
	if meta, ok := dr.Other.(*decoder.MetaData); ok {
		meta.ApplyMirroredCorrection(points)
		mirrored = meta.Mirrored
	}

	res := qrcode.NewResult(dr.Text, dr.RawBytes, dr.NumBits, points)
	if dr.ByteSegments != nil {
		res.PutMetadata(qrcode.MetadataByteSegments, dr.ByteSegments)
	}
	if dr.ECLevel != "" {
		res.PutMetadata(qrcode.MetadataErrorCorrectionLevel, dr.ECLevel)
	}
	if dr.HasStructuredAppend() {
		res.PutMetadata(qrcode.MetadataStructuredAppendSequence, dr.StructuredAppendSequenceNumber)
		res.PutMetadata(qrcode.MetadataStructuredAppendParity, dr.StructuredAppendParity)
	}
	res.PutMetadata(qrcode.MetadataErrorsCorrected, dr.ErrorsCorrected)
	res.PutMetadata(qrcode.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
	if mirrored {
		res.PutMetadata(qrcode.MetadataMirrored, true)
	}
	opts.Log().Debug("decoded symbol",
		"ec_level", dr.ECLevel,
		"errors_corrected", dr.ErrorsCorrected,
		"mirrored", mirrored)
	return res, nil
}

// extractPureBits reads a symbol from an image holding nothing but the
// unrotated symbol and a light border.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	tl, ok1 := image.TopLeftOnBit()
	br, ok2 := image.BottomRightOnBit()
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: blank image", qrcode.ErrNotFound)
	}
	moduleSize, err := pureModuleSize(tl, image)
	if err != nil {
		return nil, err
	}

	top, bottom := tl[1], br[1]
	left, right := tl[0], br[0]
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: degenerate symbol bounds", qrcode.ErrNotFound)
	}
	if bottom-top != right-left {
		// Assume the symbol is square and trust the height.
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, fmt.Errorf("%w: symbol runs off the image", qrcode.ErrNotFound)
		}
	}

	dim := int(math.Round(float64(right-left+1) / moduleSize))
	if dim <= 0 || dim != int(math.Round(float64(bottom-top+1)/moduleSize)) {
		return nil, fmt.Errorf("%w: symbol is not square", qrcode.ErrNotFound)
	}

	// Sample module centers, pulled back in if rounding pushed them past
	// the symbol edge.
	nudge := int(moduleSize / 2)
	top += nudge
	left += nudge
	if over := left + int(float64(dim-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: module grid overshoots right edge", qrcode.ErrNotFound)
		}
		left -= over
	}
	if over := top + int(float64(dim-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: module grid overshoots bottom edge", qrcode.ErrNotFound)
		}
		top -= over
	}

	bits := bitutil.NewBitMatrix(dim)
	for y := 0; y < dim; y++ {
		iy := top + int(float64(y)*moduleSize)
		for x := 0; x < dim; x++ {
			if image.Get(left+int(float64(x)*moduleSize), iy) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize walks the diagonal of the top-left finder: five color
// changes span its seven modules.
func pureModuleSize(tl [2]int, image *bitutil.BitMatrix) (float64, error) {
	x, y := tl[0], tl[1]
	dark := true
	transitions := 0
	for x < image.Width() && y < image.Height() {
		if dark != image.Get(x, y) {
			if transitions++; transitions == 5 {
				break
			}
			dark = !dark
		}
		x++
		y++
	}
	if x == image.Width() || y == image.Height() {
		return 0, fmt.Errorf("%w: no finder pattern at the top-left", qrcode.ErrNotFound)
	}
	return float64(x-tl[0]) / 7, nil
}
