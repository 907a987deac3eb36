package common

import "fmt"

// FrameID addresses a slot of the buffer pool. Valid ids start at 1,
// zero is reserved as "no frame".
type FrameID uint64

const NilFrameID FrameID = 0

type FileID uint64

type PageID uint64

type PageIdentity struct {
	FileID FileID
	PageID PageID
}

func (p PageIdentity) String() string {
	return fmt.Sprintf("%d:%d", p.FileID, p.PageID)
}
