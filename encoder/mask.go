package encoder

// Penalty weights from ISO 18004 section 8.8.2.
const (
	penaltyN1 = 3
	penaltyN2 = 3
	penaltyN3 = 40
	penaltyN4 = 10
)

// maskPenalty scores a fully built symbol; lower is better.
func maskPenalty(m *ByteMatrix) int {
	return penaltyRule1(m) + penaltyRule2(m) + penaltyRule3(m) + penaltyRule4(m)
}

// penaltyRule1 charges runs of five or more same coloured modules in a row
// or column.
func penaltyRule1(m *ByteMatrix) int {
	return runPenalty(m.width, m.height, func(i, j int) int8 { return m.Get(j, i) }) +
		runPenalty(m.height, m.width, func(i, j int) int8 { return m.Get(i, j) })
}

func runPenalty(length, lines int, at func(line, pos int) int8) int {
	penalty := 0
	score := func(run int) {
		if run >= 5 {
			penalty += penaltyN1 + run - 5
		}
	}
	for i := 0; i < lines; i++ {
		run := 0
		var prev int8 = empty
		for j := 0; j < length; j++ {
			if v := at(i, j); v == prev {
				run++
			} else {
				score(run)
				run, prev = 1, v
			}
		}
		score(run)
	}
	return penalty
}

// penaltyRule2 charges each 2×2 block of one colour.
func penaltyRule2(m *ByteMatrix) int {
	penalty := 0
	for y := 0; y < m.height-1; y++ {
		for x := 0; x < m.width-1; x++ {
			v := m.Get(x, y)
			if v == m.Get(x+1, y) && v == m.Get(x, y+1) && v == m.Get(x+1, y+1) {
				penalty += penaltyN2
			}
		}
	}
	return penalty
}

// finderLike is the 1:1:3:1:1 dark/light ratio of a finder pattern.
var finderLike = [7]int8{1, 0, 1, 1, 1, 0, 1}

// penaltyRule3 charges finder-like sequences with four light modules on
// either side.
func penaltyRule3(m *ByteMatrix) int {
	penalty := 0
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if x+6 < m.width && matchesFinder(func(k int) int8 { return m.Get(x+k, y) }) &&
				(lightRun(x+7, x+11, func(k int) int8 { return m.Get(k, y) }, m.width) ||
					lightRun(x-4, x, func(k int) int8 { return m.Get(k, y) }, m.width)) {
				penalty += penaltyN3
			}
			if y+6 < m.height && matchesFinder(func(k int) int8 { return m.Get(x, y+k) }) &&
				(lightRun(y+7, y+11, func(k int) int8 { return m.Get(x, k) }, m.height) ||
					lightRun(y-4, y, func(k int) int8 { return m.Get(x, k) }, m.height)) {
				penalty += penaltyN3
			}
		}
	}
	return penalty
}

func matchesFinder(at func(k int) int8) bool {
	for k, v := range finderLike {
		if at(k) != v {
			return false
		}
	}
	return true
}

// lightRun reports whether cells from..to-1 exist and are all light.
func lightRun(from, to int, at func(k int) int8, limit int) bool {
	if from < 0 || to > limit {
		return false
	}
	for k := from; k < to; k++ {
		if at(k) == 1 {
			return false
		}
	}
	return true
}

// penaltyRule4 charges ten points for every five percent the dark module
// ratio strays from one half.
func penaltyRule4(m *ByteMatrix) int {
	dark := 0
	for _, v := range m.cells {
		if v == 1 {
			dark++
		}
	}
	total := len(m.cells)
	deviation := 2*dark - total
	if deviation < 0 {
		deviation = -deviation
	}
	return deviation * 10 / total * penaltyN4
}
