package detector

import (
	"fmt"
	"math"

	qrcode "github.com/coco-projects/qrcode"
	"github.com/coco-projects/qrcode/bitutil"
)

// AlignmentPattern is the 5×5 pattern near the bottom-right corner of
// version 2 and larger symbols.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

func (a AlignmentPattern) Point() qrcode.ResultPoint {
	return qrcode.ResultPoint{X: a.X, Y: a.Y}
}

func (a AlignmentPattern) AboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-a.Y) > moduleSize || math.Abs(j-a.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - a.EstimatedModuleSize)
	return diff <= 1 || diff <= a.EstimatedModuleSize
}

// CombineEstimate averages a second detection into a.
func (a AlignmentPattern) CombineEstimate(i, j, moduleSize float64) AlignmentPattern {
	return AlignmentPattern{
		X:                   (a.X + j) / 2,
		Y:                   (a.Y + i) / 2,
		EstimatedModuleSize: (a.EstimatedModuleSize + moduleSize) / 2,
	}
}

// alignmentSearch looks for the light/dark/light 1:1:1 crossing of the
// pattern's center module inside a window of the image, starting from the
// middle row and moving outwards.
type alignmentSearch struct {
	image                         *bitutil.BitMatrix
	startX, startY, width, height int
	moduleSize                    float64
	possible                      []AlignmentPattern
}

func (s *alignmentSearch) find() (AlignmentPattern, error) {
	maxJ := s.startX + s.width
	middleI := s.startY + s.height/2
	for gen := 0; gen < s.height; gen++ {
		i := middleI - (gen+1)/2
		if gen&1 == 0 {
			i = middleI + (gen+1)/2
		}
		var sc [3]int
		j := s.startX
		for j < maxJ && !s.image.Get(j, i) {
			j++
		}
		state := 0
		for ; j < maxJ; j++ {
			if !s.image.Get(j, i) {
				if state == 1 {
					state++
				}
				sc[state]++
				continue
			}
			switch state {
			case 1:
				sc[1]++
			case 2:
				if s.foundPatternCross(sc) {
					if p, ok := s.handlePossibleCenter(sc, i, j); ok {
						return p, nil
					}
				}
				sc = [3]int{sc[2], 1, 0}
				state = 1
			default:
				state++
				sc[state]++
			}
		}
		if s.foundPatternCross(sc) {
			if p, ok := s.handlePossibleCenter(sc, i, maxJ); ok {
				return p, nil
			}
		}
	}
	// Settle for an unconfirmed candidate.
	if len(s.possible) > 0 {
		return s.possible[0], nil
	}
	return AlignmentPattern{}, fmt.Errorf("%w: no alignment pattern", qrcode.ErrNotFound)
}

func (s *alignmentSearch) foundPatternCross(sc [3]int) bool {
	v := s.moduleSize / 2
	for _, c := range sc {
		if math.Abs(s.moduleSize-float64(c)) >= v {
			return false
		}
	}
	return true
}

func alignmentCenterFromEnd(sc [3]int, end int) float64 {
	return float64(end-sc[2]) - float64(sc[1])/2
}

// handlePossibleCenter records a crossing and returns a pattern once the
// same one has been seen twice.
func (s *alignmentSearch) handlePossibleCenter(sc [3]int, i, j int) (AlignmentPattern, bool) {
	total := sc[0] + sc[1] + sc[2]
	centerJ := alignmentCenterFromEnd(sc, j)
	centerI := s.crossCheckVertical(i, int(centerJ), 2*sc[1], total)
	if math.IsNaN(centerI) {
		return AlignmentPattern{}, false
	}
	size := float64(total) / 3
	for _, c := range s.possible {
		if c.AboutEquals(size, centerI, centerJ) {
			return c.CombineEstimate(centerI, centerJ, size), true
		}
	}
	s.possible = append(s.possible, AlignmentPattern{X: centerJ, Y: centerI, EstimatedModuleSize: size})
	return AlignmentPattern{}, false
}

func (s *alignmentSearch) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := s.image.Height()
	var sc [3]int
	i := startI
	for i >= 0 && s.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i--
	}
	if i < 0 || sc[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && !s.image.Get(centerJ, i) && sc[0] <= maxCount {
		sc[0]++
		i--
	}
	if sc[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && s.image.Get(centerJ, i) && sc[1] <= maxCount {
		sc[1]++
		i++
	}
	if i == maxI || sc[1] > maxCount {
		return math.NaN()
	}
	for i < maxI && !s.image.Get(centerJ, i) && sc[2] <= maxCount {
		sc[2]++
		i++
	}
	if sc[2] > maxCount {
		return math.NaN()
	}

	if 5*abs(sc[0]+sc[1]+sc[2]-originalTotal) >= 2*originalTotal || !s.foundPatternCross(sc) {
		return math.NaN()
	}
	return alignmentCenterFromEnd(sc, i)
}
