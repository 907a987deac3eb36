package bufferpool

import (
	"github.com/go-faster/errors"

	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/pkg/optional"
)

var (
	// ErrInvalidFrameID is the panic value for a frame id outside [1, capacity].
	ErrInvalidFrameID = errors.New("invalid frame id")
	// ErrRemoveNonEvictable is the panic value for Remove on a pinned frame.
	ErrRemoveNonEvictable = errors.New("remove of a non-evictable frame")

	ErrUnknownPolicy = errors.New("unknown replacement policy")
)

// Replacer decides which frame of the pool to reclaim. Frame ids are in
// [1, capacity]. Out of range ids and Remove on a non-evictable frame are
// caller bugs: the call panics with an error wrapping ErrInvalidFrameID or
// ErrRemoveNonEvictable and leaves the replacer untouched.
type Replacer interface {
	RecordAccess(frameID common.FrameID, accessType common.AccessType)
	SetEvictable(frameID common.FrameID, evictable bool)
	// Evict returns None when no frame is evictable.
	Evict() optional.Optional[common.FrameID]
	// Remove drops the tracking state of an evictable frame. Unknown frames
	// are ignored.
	Remove(frameID common.FrameID)
	// Size is the number of evictable frames.
	Size() uint64
}

const (
	PolicyLRUK = "lru-k"
	PolicyLRU  = "lru"
)

var (
	_ Replacer = &LRUKReplacer{}
	_ Replacer = &LRUReplacer{}
)

func NewReplacer(policy string, capacity uint64, k uint64) (Replacer, error) {
	switch policy {
	case PolicyLRUK, "":
		return NewLRUKReplacer(capacity, k), nil
	case PolicyLRU:
		return NewLRUReplacer(capacity), nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "policy %q", policy)
	}
}

func checkFrameID(frameID common.FrameID, capacity uint64) error {
	if frameID == common.NilFrameID || uint64(frameID) > capacity {
		return errors.Wrapf(ErrInvalidFrameID, "frame %d not in [1, %d]", frameID, capacity)
	}
	return nil
}
