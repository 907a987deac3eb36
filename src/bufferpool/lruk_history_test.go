package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
)

func TestHistoryKeepsLastKTimestamps(t *testing.T) {
	h := newLRUKHistory(1, 3)

	for ts := common.Timestamp(1); ts <= 5; ts++ {
		h.record(ts, common.AccessLookup)
		assert.LessOrEqual(t, len(h.timestamps), 3)
	}

	assert.Equal(t, []common.Timestamp{3, 4, 5}, h.timestamps)
	assert.Equal(t, common.Timestamp(2), h.distance())
	assert.Equal(t, common.Timestamp(5), h.lastAccess())
}

func TestHistoryDistanceIsInfiniteUntilK(t *testing.T) {
	h := newLRUKHistory(1, 2)
	assert.Equal(t, common.InfTimestamp, h.distance())
	assert.Equal(t, common.InfTimestamp, h.lastAccess())

	h.record(4, common.AccessUnknown)
	assert.Equal(t, common.InfTimestamp, h.distance())
	assert.Equal(t, common.Timestamp(4), h.lastAccess())

	h.record(9, common.AccessScan)
	assert.Equal(t, common.Timestamp(5), h.distance())
	assert.Equal(t, common.AccessScan, h.lastType)
}

func TestHistoryWithKOneIsPlainLRU(t *testing.T) {
	h := newLRUKHistory(1, 1)

	h.record(7, common.AccessUnknown)
	assert.Equal(t, common.Timestamp(0), h.distance())

	h.record(8, common.AccessUnknown)
	assert.Equal(t, []common.Timestamp{8}, h.timestamps)
}

func TestHistoryRejectsNonMonotonicTimestamps(t *testing.T) {
	h := newLRUKHistory(1, 2)
	h.record(5, common.AccessUnknown)

	assert.Panics(t, func() { h.record(5, common.AccessUnknown) })
}

func TestEvictKeyOrder(t *testing.T) {
	inf := common.InfTimestamp

	infOld := evictKey{distance: inf, lastAccess: 1, frameID: 3}
	infNew := evictKey{distance: inf, lastAccess: 6, frameID: 1}
	farOld := evictKey{distance: 5, lastAccess: 7, frameID: 2}
	farNew := evictKey{distance: 5, lastAccess: 8, frameID: 1}
	near := evictKey{distance: 1, lastAccess: 2, frameID: 4}

	ordered := []evictKey{infOld, infNew, farOld, farNew, near}
	for i := range ordered {
		assert.False(t, evictsBefore(ordered[i], ordered[i]), "order must be irreflexive")
		for j := i + 1; j < len(ordered); j++ {
			assert.True(t, evictsBefore(ordered[i], ordered[j]), "%v < %v", ordered[i], ordered[j])
			assert.False(t, evictsBefore(ordered[j], ordered[i]), "%v > %v", ordered[j], ordered[i])
		}
	}
}
