package bufferpool

import (
	"container/list"
	"sync"

	"github.com/go-faster/errors"

	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/pkg/optional"
)

// LRUReplacer is the classic least-recently-used policy. The front of the
// list is the most recently touched evictable frame, the back is the victim.
type LRUReplacer struct {
	mu       sync.Mutex
	capacity uint64

	lru *list.List
	// frames holds list elements of evictable frames only.
	frames map[common.FrameID]*list.Element
	// tracked maps every recorded frame to its evictable flag.
	tracked map[common.FrameID]bool
}

func NewLRUReplacer(capacity uint64) *LRUReplacer {
	assert.Assert(capacity > 0, "replacer capacity must be greater than zero")

	return &LRUReplacer{
		capacity: capacity,
		lru:      list.New(),
		frames:   make(map[common.FrameID]*list.Element),
		tracked:  make(map[common.FrameID]bool),
	}
}

func (l *LRUReplacer) RecordAccess(frameID common.FrameID, _ common.AccessType) {
	l.mu.Lock()
	defer l.mu.Unlock()

	assert.Check(checkFrameID(frameID, l.capacity))

	if _, ok := l.tracked[frameID]; !ok {
		l.tracked[frameID] = false
		return
	}

	if elem, ok := l.frames[frameID]; ok {
		l.lru.MoveToFront(elem)
	}
}

func (l *LRUReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	assert.Check(checkFrameID(frameID, l.capacity))

	was, ok := l.tracked[frameID]
	if !ok || was == evictable {
		return
	}

	l.tracked[frameID] = evictable
	if evictable {
		l.frames[frameID] = l.lru.PushFront(frameID)
		return
	}

	l.lru.Remove(l.frames[frameID])
	delete(l.frames, frameID)
}

func (l *LRUReplacer) Evict() optional.Optional[common.FrameID] {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem := l.lru.Back()
	if elem == nil {
		return optional.None[common.FrameID]()
	}

	frameID := assert.Cast[common.FrameID](l.lru.Remove(elem))
	delete(l.frames, frameID)
	delete(l.tracked, frameID)

	return optional.Some(frameID)
}

func (l *LRUReplacer) Remove(frameID common.FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	assert.Check(checkFrameID(frameID, l.capacity))

	evictable, ok := l.tracked[frameID]
	if !ok {
		return
	}
	if !evictable {
		assert.Check(errors.Wrapf(ErrRemoveNonEvictable, "frame %d", frameID))
	}

	l.lru.Remove(l.frames[frameID])
	delete(l.frames, frameID)
	delete(l.tracked, frameID)
}

func (l *LRUReplacer) Size() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return uint64(len(l.frames))
}
