package bufferpool

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/btree"

	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/pkg/optional"
)

const evictIndexDegree = 8

// LRUKReplacer implements the LRU-K replacement policy.
//
// The victim is the evictable frame with the largest backward k-distance,
// i.e. the distance between its newest and its k-th newest access. Frames
// with fewer than k recorded accesses have an infinite distance; ties are
// broken in favour of the frame whose last access is the oldest.
//
// All state lives behind a single mutex held for the whole of every call.
type LRUKReplacer struct {
	mu sync.Mutex

	capacity uint64
	k        int

	// slots[id] is nil for frames that are not tracked. Index 0 is unused.
	slots []*lrukHistory
	// index holds exactly the keys of evictable histories.
	index *btree.BTreeG[evictKey]

	clock     common.Timestamp
	evictable uint64
}

// FrameStats is a copy of the replacer's view of one frame.
type FrameStats struct {
	FrameID        common.FrameID
	Timestamps     []common.Timestamp
	Distance       common.Timestamp
	LastAccess     common.Timestamp
	LastAccessType common.AccessType
	Evictable      bool
}

// InfiniteDistance reports whether the frame has fewer than k accesses.
func (s FrameStats) InfiniteDistance() bool {
	return s.Distance == common.InfTimestamp
}

func NewLRUKReplacer(capacity uint64, k uint64) *LRUKReplacer {
	assert.Assert(capacity > 0, "replacer capacity must be greater than zero")
	assert.Assert(k >= 1, "k must be at least 1, got %d", k)

	return &LRUKReplacer{
		capacity: capacity,
		k:        int(k), //nolint:gosec
		slots:    make([]*lrukHistory, capacity+1),
		index:    btree.NewG(evictIndexDegree, evictsBefore),
	}
}

// Capacity is the largest valid frame id.
func (r *LRUKReplacer) Capacity() uint64 {
	return r.capacity
}

// K is the number of accesses kept per frame.
func (r *LRUKReplacer) K() uint64 {
	return uint64(r.k) //nolint:gosec
}

func (r *LRUKReplacer) RecordAccess(frameID common.FrameID, accessType common.AccessType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assert.Check(checkFrameID(frameID, r.capacity))

	h := r.slots[frameID]
	if h == nil {
		h = newLRUKHistory(frameID, r.k)
		r.slots[frameID] = h
	}

	if h.evictable {
		_, ok := r.index.Delete(h.key())
		assert.Assert(ok, "evictable frame %d is missing from the index", frameID)
	}

	r.clock++
	h.record(r.clock, accessType)

	if h.evictable {
		r.index.ReplaceOrInsert(h.key())
	}
}

func (r *LRUKReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assert.Check(checkFrameID(frameID, r.capacity))

	h := r.slots[frameID]
	if h == nil || h.evictable == evictable {
		return
	}

	h.evictable = evictable
	if evictable {
		_, replaced := r.index.ReplaceOrInsert(h.key())
		assert.Assert(!replaced, "frame %d was indexed while pinned", frameID)
		r.evictable++
		return
	}

	_, ok := r.index.Delete(h.key())
	assert.Assert(ok, "evictable frame %d is missing from the index", frameID)
	r.evictable--
}

func (r *LRUKReplacer) Evict() optional.Optional[common.FrameID] {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.index.DeleteMin()
	if !ok {
		return optional.None[common.FrameID]()
	}

	h := r.slots[key.frameID]
	assert.Assert(h != nil && h.evictable, "index points to untracked frame %d", key.frameID)

	r.slots[key.frameID] = nil
	r.evictable--

	return optional.Some(key.frameID)
}

func (r *LRUKReplacer) Remove(frameID common.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assert.Check(checkFrameID(frameID, r.capacity))

	h := r.slots[frameID]
	if h == nil {
		return
	}
	if !h.evictable {
		assert.Check(errors.Wrapf(ErrRemoveNonEvictable, "frame %d", frameID))
	}

	_, ok := r.index.Delete(h.key())
	assert.Assert(ok, "evictable frame %d is missing from the index", frameID)

	r.slots[frameID] = nil
	r.evictable--
}

func (r *LRUKReplacer) Size() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.evictable
}

// Snapshot reports the tracking state of a frame. The second value is false
// for frames that were never accessed or have been evicted or removed.
func (r *LRUKReplacer) Snapshot(frameID common.FrameID) (FrameStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assert.Check(checkFrameID(frameID, r.capacity))

	h := r.slots[frameID]
	if h == nil {
		return FrameStats{}, false
	}

	timestamps := make([]common.Timestamp, len(h.timestamps))
	copy(timestamps, h.timestamps)

	return FrameStats{
		FrameID:        frameID,
		Timestamps:     timestamps,
		Distance:       h.distance(),
		LastAccess:     h.lastAccess(),
		LastAccessType: h.lastType,
		Evictable:      h.evictable,
	}, true
}
