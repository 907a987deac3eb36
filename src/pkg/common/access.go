package common

import "math"

// Timestamp is a tick of the replacer's logical clock.
type Timestamp uint64

// InfTimestamp doubles as the +inf backward distance and as the last access
// of an empty history.
const InfTimestamp Timestamp = math.MaxUint64

type AccessType uint8

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
	AccessIndex
)

func (a AccessType) String() string {
	switch a {
	case AccessLookup:
		return "lookup"
	case AccessScan:
		return "scan"
	case AccessIndex:
		return "index"
	default:
		return "unknown"
	}
}
