package utils

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueInts(t *testing.T) {
	cases := []struct {
		name   string
		count  int
		lo, hi int
	}{
		{"sparse", 5, 1, 10},
		{"dense shuffle path", 8, 1, 10},
		{"full range", 3, 1, 3},
		{"single value", 1, 42, 42},
		{"negative", 3, -5, -1},
		{"zero count", 0, 1, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := GenerateUniqueInts(tc.count, tc.lo, tc.hi, rand.New(rand.NewSource(42)))
			require.Len(t, res, tc.count)

			seen := make(map[int]struct{}, len(res))
			for _, v := range res {
				assert.GreaterOrEqual(t, v, tc.lo)
				assert.LessOrEqual(t, v, tc.hi)

				_, dup := seen[v]
				assert.False(t, dup, "value %d is duplicated", v)
				seen[v] = struct{}{}
			}
		})
	}
}

func TestGenerateUniqueIntsFrameIDs(t *testing.T) {
	type frameID uint64

	res := GenerateUniqueInts[frameID](4, 1, 4, rand.New(rand.NewSource(7)))
	assert.ElementsMatch(t, []frameID{1, 2, 3, 4}, res)
}

func TestGenerateUniqueIntsTooMany(t *testing.T) {
	assert.Panics(t, func() {
		GenerateUniqueInts(4, 1, 3, rand.New(rand.NewSource(1)))
	})
}
