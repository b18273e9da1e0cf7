package reedsolomon

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFieldLaws(t *testing.T) {
	gf := QRCodeField256()
	elem := gen.IntRange(0, 255)
	nonZero := gen.IntRange(1, 255)
	properties := gopter.NewProperties(nil)

	properties.Property("multiply commutes", prop.ForAll(
		func(a, b int) bool { return gf.Multiply(a, b) == gf.Multiply(b, a) },
		elem, elem,
	))
	properties.Property("multiply associates", prop.ForAll(
		func(a, b, c int) bool {
			return gf.Multiply(gf.Multiply(a, b), c) == gf.Multiply(a, gf.Multiply(b, c))
		},
		elem, elem, elem,
	))
	properties.Property("multiply distributes over add", prop.ForAll(
		func(a, b, c int) bool {
			return gf.Multiply(a, AddOrSubtract(b, c)) == AddOrSubtract(gf.Multiply(a, b), gf.Multiply(a, c))
		},
		elem, elem, elem,
	))
	properties.Property("a times inverse(a) is one", prop.ForAll(
		func(a int) bool {
			inv, err := gf.Inverse(a)
			return err == nil && gf.Multiply(a, inv) == 1
		},
		nonZero,
	))
	properties.Property("a plus a is zero", prop.ForAll(
		func(a int) bool { return AddOrSubtract(a, a) == 0 },
		elem,
	))

	properties.TestingRun(t)
}

func TestReedSolomonCapacity(t *testing.T) {
	gf := QRCodeField256()
	properties := gopter.NewProperties(nil)

	properties.Property("up to t errors are corrected", prop.ForAll(
		func(dataSize, twoS int, seed int64) bool {
			r := rand.New(rand.NewSource(seed))
			cw := make([]int, dataSize+twoS)
			for i := 0; i < dataSize; i++ {
				cw[i] = r.Intn(256)
			}
			if NewEncoder(gf).Encode(cw, twoS) != nil {
				return false
			}
			want := append([]int(nil), cw...)
			errs := r.Intn(twoS/2 + 1)
			corrupt(cw, errs, r)
			n, err := NewDecoder(gf).Decode(cw, twoS)
			if err != nil || n != errs {
				return false
			}
			for i := range cw {
				if cw[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 120), gen.IntRange(2, 30), gen.Int64(),
	))

	properties.Property("beyond t errors never yields an invalid codeword", prop.ForAll(
		func(dataSize, twoS int, seed int64) bool {
			r := rand.New(rand.NewSource(seed))
			cw := make([]int, dataSize+twoS)
			for i := 0; i < dataSize; i++ {
				cw[i] = r.Intn(256)
			}
			if NewEncoder(gf).Encode(cw, twoS) != nil {
				return false
			}
			// stay within twoS so the syndromes cannot all vanish
			corrupt(cw, min(len(cw), twoS, twoS/2+1+r.Intn(3)), r)
			n, err := NewDecoder(gf).Decode(cw, twoS)
			if err != nil {
				return true
			}
			if n == 0 {
				return false
			}
			// whatever came back must be a codeword itself
			n, err = NewDecoder(gf).Decode(cw, twoS)
			return err == nil && n == 0
		},
		gen.IntRange(1, 120), gen.IntRange(2, 30), gen.Int64(),
	))

	properties.TestingRun(t)
}
