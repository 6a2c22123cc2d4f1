package trace

import (
	"sync/atomic"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindEnter    Kind = iota + 1 // scope pushed
	KindExit                     // scope popped and measured
	KindMismatch                 // exit name did not match the top of stack
	KindReset                    // all data discarded
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindEnter:
		return "enter"
	case KindExit:
		return "exit"
	case KindMismatch:
		return "mismatch"
	case KindReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time     // clock reading at the event
	Seq      uint64        // global sequence number (monotonic)
	Kind     Kind          // event kind
	GID      uint64        // goroutine ID
	Depth    int           // stack depth after the event
	Name     string        // scope name
	Expected string        // top of stack, for KindMismatch
	Elapsed  time.Duration // measured duration, for KindExit
}

var globalSeq atomic.Uint64

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}
