package decoder

import "github.com/coco-projects/qrcode/bitutil"

// DataMasks reports whether the module at row i, column j is inverted
// under each of the eight mask patterns.
var DataMasks = [8]func(i, j int) bool{
	func(i, j int) bool { return (i+j)%2 == 0 },
	func(i, j int) bool { return i%2 == 0 },
	func(i, j int) bool { return j%3 == 0 },
	func(i, j int) bool { return (i+j)%3 == 0 },
	func(i, j int) bool { return (i/2+j/3)%2 == 0 },
	func(i, j int) bool { return i*j%6 == 0 },
	func(i, j int) bool { return i*j%6 < 3 },
	func(i, j int) bool { return (i+j+i*j%3)%2 == 0 },
}

// UnmaskBitMatrix flips every module of the top-left dimension square that
// mask inverts. Applying it twice restores the matrix.
func UnmaskBitMatrix(m *bitutil.BitMatrix, dimension, mask int) {
	f := DataMasks[mask]
	for i := 0; i < dimension; i++ {
		for j := 0; j < dimension; j++ {
			if f(i, j) {
				m.Flip(j, i)
			}
		}
	}
}
