package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
	"github.com/coco-projects/qrcode/decoder"
	"github.com/coco-projects/qrcode/encoder"
)

const scale = 4

// render draws content with a four module quiet zone at four pixels per
// module.
func render(t *testing.T, content string, version int) (*encoder.QRCode, *bitutil.BitMatrix) {
	t.Helper()
	code, err := encoder.Encode(content, &qrcode.EncodeOptions{ErrorCorrection: "M", QRVersion: version})
	require.NoError(t, err)
	side := (code.Matrix.Width() + 8) * scale
	return code, encoder.RenderResult(code, side, side, qrcode.DefaultMargin)
}

func TestDetectUpright(t *testing.T) {
	for _, version := range []int{1, 2, 7} {
		code, img := render(t, "DETECTOR TEST", version)
		res, err := NewDetector(img).Detect(nil)
		require.NoError(t, err, "version %d", version)
		assert.True(t, res.Bits.Equals(code.ToBitMatrix()), "version %d", version)

		// Finder centers sit 3.5 modules in from the symbol corners.
		origin := float64(4 * scale)
		near := origin + 3.5*scale
		far := origin + (float64(code.Matrix.Width())-3.5)*scale
		require.GreaterOrEqual(t, len(res.Points), 3)
		assert.InDelta(t, near, res.Points[1].X, 1.5)
		assert.InDelta(t, near, res.Points[1].Y, 1.5)
		assert.InDelta(t, far, res.Points[2].X, 1.5)
		assert.InDelta(t, far, res.Points[0].Y, 1.5)
		if version == 1 {
			assert.Len(t, res.Points, 3)
		} else {
			assert.Len(t, res.Points, 4, "alignment pattern expected for version %d", version)
		}
	}
}

func TestDetectRotated(t *testing.T) {
	code, img := render(t, "ROTATED", 3)
	img.Rotate90()
	res, err := NewDetector(img).Detect(&qrcode.DecodeOptions{TryHarder: true})
	require.NoError(t, err)
	assert.True(t, res.Bits.Equals(code.ToBitMatrix()))

	dec, err := decoder.NewDecoder().Decode(res.Bits, nil)
	require.NoError(t, err)
	assert.Equal(t, "ROTATED", dec.Text)
}

func TestDetectPure(t *testing.T) {
	code, img := render(t, "PURE", 1)
	res, err := NewDetector(img).Detect(&qrcode.DecodeOptions{PureBarcode: true})
	require.NoError(t, err)
	assert.True(t, res.Bits.Equals(code.ToBitMatrix()))
}

func TestDetectNothing(t *testing.T) {
	img := bitutil.NewBitMatrix(120)
	require.NoError(t, img.SetRegion(30, 30, 40, 40))
	_, err := NewDetector(img).Detect(nil)
	assert.ErrorIs(t, err, qrcode.ErrNotFound)
}

func TestProcessFinderPatternInfo(t *testing.T) {
	code, img := render(t, "KNOWN POINTS", 1)
	near := float64(4*scale) + 3.5*scale
	far := float64(4*scale) + (21-3.5)*scale
	info := &FinderPatternInfo{
		TopLeft:    FinderPattern{X: near, Y: near, EstimatedModuleSize: scale, Count: 1},
		TopRight:   FinderPattern{X: far, Y: near, EstimatedModuleSize: scale, Count: 1},
		BottomLeft: FinderPattern{X: near, Y: far, EstimatedModuleSize: scale, Count: 1},
	}
	res, err := NewDetector(img).ProcessFinderPatternInfo(info, nil)
	require.NoError(t, err)
	assert.True(t, res.Bits.Equals(code.ToBitMatrix()))
	assert.Equal(t, []qrcode.ResultPoint{{X: near, Y: far}, {X: near, Y: near}, {X: far, Y: near}}, res.Points)
}

func TestComputeDimension(t *testing.T) {
	tl := qrcode.ResultPoint{X: 0, Y: 0}
	dim, err := computeDimension(tl, qrcode.ResultPoint{X: 14, Y: 0}, qrcode.ResultPoint{X: 0, Y: 14}, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, dim)

	dim, err = computeDimension(tl, qrcode.ResultPoint{X: 15, Y: 0}, qrcode.ResultPoint{X: 0, Y: 15}, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, dim, "22 snaps down")

	_, err = computeDimension(tl, qrcode.ResultPoint{X: 16, Y: 0}, qrcode.ResultPoint{X: 0, Y: 16}, 1)
	assert.ErrorIs(t, err, qrcode.ErrNotFound)
}

func TestFinderPatternEstimates(t *testing.T) {
	f := FinderPattern{X: 10, Y: 20, EstimatedModuleSize: 2, Count: 1}
	assert.True(t, f.AboutEquals(2, 21, 11))
	assert.False(t, f.AboutEquals(2, 25, 10))
	assert.False(t, f.AboutEquals(2, 20, 13))

	c := f.CombineEstimate(22, 13, 4)
	assert.Equal(t, FinderPattern{X: 11.5, Y: 21, EstimatedModuleSize: 3, Count: 2}, c)
	c = c.CombineEstimate(21, 11.5, 3)
	assert.Equal(t, 3, c.Count)
	assert.InDelta(t, 11.5, c.X, 1e-9)

	a := AlignmentPattern{X: 4, Y: 4, EstimatedModuleSize: 1}
	assert.True(t, a.AboutEquals(1, 5, 3))
	assert.Equal(t, AlignmentPattern{X: 5, Y: 4.5, EstimatedModuleSize: 1.5}, a.CombineEstimate(5, 6, 2))
}

func TestSelectBestPatternsDropsOutliers(t *testing.T) {
	s := &finderSearch{possible: []FinderPattern{
		{X: 0, Y: 0, EstimatedModuleSize: 4, Count: 3},
		{X: 100, Y: 0, EstimatedModuleSize: 4.1, Count: 2},
		{X: 50, Y: 50, EstimatedModuleSize: 12, Count: 5},
		{X: 0, Y: 100, EstimatedModuleSize: 3.9, Count: 4},
	}}
	best, err := s.selectBestPatterns()
	require.NoError(t, err)
	require.Len(t, best, 3)
	for _, p := range best {
		assert.Less(t, p.EstimatedModuleSize, 5.0)
	}

	_, err = (&finderSearch{possible: s.possible[:2]}).selectBestPatterns()
	assert.ErrorIs(t, err, qrcode.ErrNotFound)
}
