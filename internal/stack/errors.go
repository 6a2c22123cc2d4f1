package stack

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeMismatch matches every *ScopeMismatchError.
	ErrScopeMismatch = errors.New("scope mismatch")
	// ErrClock matches every *ClockError.
	ErrClock = errors.New("monotonic clock unavailable")
)

// ScopeMismatchError reports an exit that does not close the innermost open
// scope. Expected is empty when no scope was open.
type ScopeMismatchError struct {
	Expected string
	Got      string
	Depth    int
}

func (e *ScopeMismatchError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("exit(%q) called without a matching enter", e.Got)
	}
	return fmt.Sprintf("scope mismatch: expected exit(%q), got exit(%q) at depth %d; enter/exit calls must be paired and nested",
		e.Expected, e.Got, e.Depth)
}

// Is lets errors.Is match ErrScopeMismatch.
func (e *ScopeMismatchError) Is(target error) bool {
	return target == ErrScopeMismatch
}

// ClockError reports that no usable monotonic timestamp was available.
type ClockError struct {
	Scope string
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("scope %q: %v", e.Scope, ErrClock)
}

// Is lets errors.Is match ErrClock.
func (e *ClockError) Is(target error) bool {
	return target == ErrClock
}
