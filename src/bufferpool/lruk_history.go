package bufferpool

import (
	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
)

// lrukHistory is the access window of a single frame: the last k timestamps,
// oldest first.
type lrukHistory struct {
	frameID    common.FrameID
	k          int
	timestamps []common.Timestamp
	evictable  bool
	lastType   common.AccessType
}

func newLRUKHistory(frameID common.FrameID, k int) *lrukHistory {
	assert.Assert(k >= 1, "history depth must be at least 1, got %d", k)

	return &lrukHistory{
		frameID:    frameID,
		k:          k,
		timestamps: make([]common.Timestamp, 0, k),
	}
}

func (h *lrukHistory) record(ts common.Timestamp, accessType common.AccessType) {
	assert.Assert(
		len(h.timestamps) == 0 || h.timestamps[len(h.timestamps)-1] < ts,
		"timestamp %d is not newer than the last recorded one",
		ts,
	)

	if len(h.timestamps) == h.k {
		copy(h.timestamps, h.timestamps[1:])
		h.timestamps = h.timestamps[:h.k-1]
	}
	h.timestamps = append(h.timestamps, ts)
	h.lastType = accessType
}

// distance is the backward k-distance, InfTimestamp while fewer than k
// accesses are known.
func (h *lrukHistory) distance() common.Timestamp {
	if len(h.timestamps) < h.k {
		return common.InfTimestamp
	}
	return h.timestamps[len(h.timestamps)-1] - h.timestamps[0]
}

func (h *lrukHistory) lastAccess() common.Timestamp {
	if len(h.timestamps) == 0 {
		return common.InfTimestamp
	}
	return h.timestamps[len(h.timestamps)-1]
}

func (h *lrukHistory) key() evictKey {
	return evictKey{
		distance:   h.distance(),
		lastAccess: h.lastAccess(),
		frameID:    h.frameID,
	}
}

// evictKey is an immutable snapshot of a history's position in the eviction
// order. It must be rebuilt after every record.
type evictKey struct {
	distance   common.Timestamp
	lastAccess common.Timestamp
	frameID    common.FrameID
}

// evictsBefore orders keys so that the next victim is the minimum: larger
// distance first, then the older last access. The frame id only makes the
// order total.
func evictsBefore(a, b evictKey) bool {
	if a.distance != b.distance {
		return a.distance > b.distance
	}
	if a.lastAccess != b.lastAccess {
		return a.lastAccess < b.lastAccess
	}
	return a.frameID < b.frameID
}
