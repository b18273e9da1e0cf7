package detector

import (
	"fmt"
	"math"
	"slices"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

const (
	centerQuorum = 2
	minSkip      = 3
	// maxModules is the width of a version 40 symbol.
	maxModules = 97
)

// FinderPattern is one of the three 7×7 corner squares. Count is the
// number of scan lines that confirmed it.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

func (f FinderPattern) Point() qrcode.ResultPoint {
	return qrcode.ResultPoint{X: f.X, Y: f.Y}
}

// AboutEquals reports whether a detection at (j, i) with the given module
// size is the same pattern.
func (f FinderPattern) AboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-f.Y) > moduleSize || math.Abs(j-f.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - f.EstimatedModuleSize)
	return diff <= 1 || diff <= f.EstimatedModuleSize
}

// CombineEstimate folds a new detection into the count-weighted average.
func (f FinderPattern) CombineEstimate(i, j, moduleSize float64) FinderPattern {
	n := float64(f.Count)
	c := n + 1
	return FinderPattern{
		X:                   (n*f.X + j) / c,
		Y:                   (n*f.Y + i) / c,
		EstimatedModuleSize: (n*f.EstimatedModuleSize + moduleSize) / c,
		Count:               f.Count + 1,
	}
}

// FinderPatternInfo is the three finder patterns in symbol order.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight FinderPattern
}

// finderSearch scans rows for the 1:1:3:1:1 dark/light/dark/light/dark
// ratio of a finder pattern crossing, then confirms each hit vertically
// and horizontally.
type finderSearch struct {
	image      *bitutil.BitMatrix
	possible   []FinderPattern
	hasSkipped bool
}

func (s *finderSearch) find(tryHarder, pure bool) (*FinderPatternInfo, error) {
	maxI, maxJ := s.image.Height(), s.image.Width()
	iSkip := 3 * maxI / (4 * maxModules)
	if iSkip < minSkip || tryHarder {
		iSkip = minSkip
	}

	done := false
	for i := iSkip - 1; i < maxI && !done; i += iSkip {
		var sc [5]int
		state := 0
		for j := 0; j < maxJ; j++ {
			if s.image.Get(j, i) {
				if state&1 == 1 {
					state++
				}
				sc[state]++
				continue
			}
			if state&1 == 1 {
				sc[state]++
				continue
			}
			if state != 4 {
				state++
				sc[state]++
				continue
			}
			if !foundPatternCross(sc) || !s.handlePossibleCenter(sc, i, j, pure) {
				sc = [5]int{sc[2], sc[3], sc[4], 1, 0}
				state = 3
				continue
			}
			iSkip = 2
			if s.hasSkipped {
				done = s.haveMultiplyConfirmedCenters()
			} else if rowSkip := s.findRowSkip(); rowSkip > sc[2] {
				i += rowSkip - sc[2] - iSkip
				j = maxJ - 1
			}
			sc = [5]int{}
			state = 0
		}
		if foundPatternCross(sc) && s.handlePossibleCenter(sc, i, maxJ, pure) {
			iSkip = sc[0]
			if s.hasSkipped {
				done = s.haveMultiplyConfirmedCenters()
			}
		}
	}

	best, err := s.selectBestPatterns()
	if err != nil {
		return nil, err
	}
	ordered := qrcode.OrderBestPatterns([3]qrcode.ResultPoint{best[0].Point(), best[1].Point(), best[2].Point()})
	byPoint := func(p qrcode.ResultPoint) FinderPattern {
		for _, f := range best {
			if f.Point().Equals(p) {
				return f
			}
		}
		return best[0]
	}
	return &FinderPatternInfo{
		BottomLeft: byPoint(ordered[0]),
		TopLeft:    byPoint(ordered[1]),
		TopRight:   byPoint(ordered[2]),
	}, nil
}

func crossRatio(sc [5]int, varianceDivisor float64) bool {
	total := 0
	for _, c := range sc {
		if c == 0 {
			return false
		}
		total += c
	}
	if total < 7 {
		return false
	}
	module := float64(total) / 7
	v := module / varianceDivisor
	return math.Abs(module-float64(sc[0])) < v &&
		math.Abs(module-float64(sc[1])) < v &&
		math.Abs(3*module-float64(sc[2])) < 3*v &&
		math.Abs(module-float64(sc[3])) < v &&
		math.Abs(module-float64(sc[4])) < v
}

func foundPatternCross(sc [5]int) bool    { return crossRatio(sc, 2) }
func foundPatternDiagonal(sc [5]int) bool { return crossRatio(sc, 1.333) }

// centerFromEnd is the middle of the center run of a crossing that ends
// just before end.
func centerFromEnd(sc [5]int, end int) float64 {
	return float64(end-sc[4]-sc[3]) - float64(sc[2])/2
}

func sum5(sc [5]int) int { return sc[0] + sc[1] + sc[2] + sc[3] + sc[4] }

func (s *finderSearch) handlePossibleCenter(sc [5]int, i, j int, pure bool) bool {
	total := sum5(sc)
	centerJ := centerFromEnd(sc, j)
	centerI := s.crossCheckVertical(i, int(centerJ), sc[2], total)
	if math.IsNaN(centerI) {
		return false
	}
	centerJ = s.crossCheckHorizontal(int(centerJ), int(centerI), sc[2], total)
	if math.IsNaN(centerJ) || (pure && !s.crossCheckDiagonal(int(centerI), int(centerJ))) {
		return false
	}
	size := float64(total) / 7
	for k, c := range s.possible {
		if c.AboutEquals(size, centerI, centerJ) {
			s.possible[k] = c.CombineEstimate(centerI, centerJ, size)
			return true
		}
	}
	s.possible = append(s.possible, FinderPattern{X: centerJ, Y: centerI, EstimatedModuleSize: size, Count: 1})
	return true
}

// crossCheck walks out from start along one axis, counting the five runs
// of a finder crossing. at reports whether position k is dark and limit is
// the axis length. It returns the new center or NaN.
func crossCheck(start, limit, maxCount, originalTotal, tolerance int, at func(k int) bool) float64 {
	var sc [5]int
	k := start
	for k >= 0 && at(k) {
		sc[2]++
		k--
	}
	if k < 0 {
		return math.NaN()
	}
	for k >= 0 && !at(k) && sc[1] <= maxCount {
		sc[1]++
		k--
	}
	if k < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for k >= 0 && at(k) && sc[0] <= maxCount {
		sc[0]++
		k--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	k = start + 1
	for k < limit && at(k) {
		sc[2]++
		k++
	}
	if k == limit {
		return math.NaN()
	}
	for k < limit && !at(k) && sc[3] < maxCount {
		sc[3]++
		k++
	}
	if k == limit || sc[3] >= maxCount {
		return math.NaN()
	}
	for k < limit && at(k) && sc[4] < maxCount {
		sc[4]++
		k++
	}
	if sc[4] >= maxCount {
		return math.NaN()
	}

	if tolerance*abs(sum5(sc)-originalTotal) >= 2*originalTotal || !foundPatternCross(sc) {
		return math.NaN()
	}
	return centerFromEnd(sc, k)
}

func (s *finderSearch) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	return crossCheck(startI, s.image.Height(), maxCount, originalTotal, 5,
		func(i int) bool { return s.image.Get(centerJ, i) })
}

func (s *finderSearch) crossCheckHorizontal(startJ, centerI, maxCount, originalTotal int) float64 {
	return crossCheck(startJ, s.image.Width(), maxCount, originalTotal, 10,
		func(j int) bool { return s.image.Get(j, centerI) })
}

// crossCheckDiagonal confirms a center along the top-left to bottom-right
// diagonal.
func (s *finderSearch) crossCheckDiagonal(centerI, centerJ int) bool {
	var sc [5]int
	dark := func(k int) bool { return s.image.Get(centerJ+k, centerI+k) }
	back := func(k int) bool { return centerI >= k && centerJ >= k }
	fwd := func(k int) bool { return centerI+k < s.image.Height() && centerJ+k < s.image.Width() }

	k := 0
	for ; back(k) && dark(-k); k++ {
		sc[2]++
	}
	if sc[2] == 0 {
		return false
	}
	for ; back(k) && !dark(-k); k++ {
		sc[1]++
	}
	if sc[1] == 0 {
		return false
	}
	for ; back(k) && dark(-k); k++ {
		sc[0]++
	}
	if sc[0] == 0 {
		return false
	}

	k = 1
	for ; fwd(k) && dark(k); k++ {
		sc[2]++
	}
	for ; fwd(k) && !dark(k); k++ {
		sc[3]++
	}
	if sc[3] == 0 {
		return false
	}
	for ; fwd(k) && dark(k); k++ {
		sc[4]++
	}
	if sc[4] == 0 {
		return false
	}
	return foundPatternDiagonal(sc)
}

// findRowSkip estimates how many rows can be skipped once two patterns are
// confirmed: the third lies at least that far below.
func (s *finderSearch) findRowSkip() int {
	if len(s.possible) <= 1 {
		return 0
	}
	var first *FinderPattern
	for k := range s.possible {
		c := &s.possible[k]
		if c.Count < centerQuorum {
			continue
		}
		if first == nil {
			first = c
			continue
		}
		s.hasSkipped = true
		return int((math.Abs(first.X-c.X) - math.Abs(first.Y-c.Y)) / 2)
	}
	return 0
}

// haveMultiplyConfirmedCenters reports whether three patterns are
// confirmed and their module sizes agree within five percent in total.
func (s *finderSearch) haveMultiplyConfirmedCenters() bool {
	confirmed := 0
	total := 0.0
	for _, p := range s.possible {
		if p.Count >= centerQuorum {
			confirmed++
			total += p.EstimatedModuleSize
		}
	}
	if confirmed < 3 {
		return false
	}
	average := total / float64(len(s.possible))
	deviation := 0.0
	for _, p := range s.possible {
		deviation += math.Abs(p.EstimatedModuleSize - average)
	}
	return deviation <= 0.05*total
}

// selectBestPatterns drops size outliers and keeps the three most
// confirmed candidates.
func (s *finderSearch) selectBestPatterns() ([]FinderPattern, error) {
	c := slices.Clone(s.possible)
	if len(c) < 3 {
		return nil, fmt.Errorf("%w: %d finder pattern candidates", qrcode.ErrNotFound, len(c))
	}
	average := func() float64 {
		t := 0.0
		for _, p := range c {
			t += p.EstimatedModuleSize
		}
		return t / float64(len(c))
	}
	if len(c) > 3 {
		avg := average()
		sq := 0.0
		for _, p := range c {
			sq += p.EstimatedModuleSize * p.EstimatedModuleSize
		}
		stdDev := math.Sqrt(max(sq/float64(len(c))-avg*avg, 0))
		slices.SortStableFunc(c, func(a, b FinderPattern) int {
			return cmpFloat(math.Abs(a.EstimatedModuleSize-avg), math.Abs(b.EstimatedModuleSize-avg))
		})
		limit := max(0.2*avg, stdDev)
		c = slices.DeleteFunc(c, func(p FinderPattern) bool {
			return math.Abs(p.EstimatedModuleSize-avg) > limit
		})
		if len(c) < 3 {
			return nil, fmt.Errorf("%w: finder pattern sizes disagree", qrcode.ErrNotFound)
		}
	}
	if len(c) > 3 {
		avg := average()
		slices.SortStableFunc(c, func(a, b FinderPattern) int {
			if a.Count != b.Count {
				return b.Count - a.Count
			}
			return cmpFloat(math.Abs(a.EstimatedModuleSize-avg), math.Abs(b.EstimatedModuleSize-avg))
		})
		c = c[:3]
	}
	return c, nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
