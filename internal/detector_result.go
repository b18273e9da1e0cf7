package internal

import (
	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

// DetectorResult is a sampled module grid plus the image points it was
// located from, ordered bottom-left, top-left, top-right and then the
// alignment pattern when one was found.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []qrcode.ResultPoint
}

func NewDetectorResult(bits *bitutil.BitMatrix, points []qrcode.ResultPoint) *DetectorResult {
	return &DetectorResult{Bits: bits, Points: points}
}
