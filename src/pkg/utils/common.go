package utils

import (
	"math/rand"

	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
)

type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// GenerateUniqueInts returns count distinct values drawn from [lo, hi].
func GenerateUniqueInts[T Integer](count int, lo, hi T, rng *rand.Rand) []T {
	assert.Assert(lo <= hi, "invalid range [%v, %v]", lo, hi)

	span := int(hi-lo) + 1
	assert.Assert(count <= span, "cannot pick %d unique values out of %d", count, span)

	if count == 0 {
		return []T{}
	}

	if count*2 > span {
		all := make([]T, span)
		for i := range span {
			all[i] = lo + T(i)
		}
		for i := span - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			all[i], all[j] = all[j], all[i]
		}
		return all[:count]
	}

	seen := make(map[T]struct{}, count)
	res := make([]T, 0, count)
	for len(res) < count {
		v := lo + T(rng.Intn(span))
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}

	return res
}
