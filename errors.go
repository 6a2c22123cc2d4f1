package scopetimer

import "github.com/skst328/scope-timer/internal/stack"

type (
	// ScopeMismatchError is returned by Exit when name does not close the
	// innermost open scope of the calling goroutine. Expected is empty when
	// no scope was open.
	ScopeMismatchError = stack.ScopeMismatchError

	// ClockError is returned when the clock yields no usable timestamp.
	ClockError = stack.ClockError
)

var (
	// ErrScopeMismatch matches every *ScopeMismatchError with errors.Is.
	ErrScopeMismatch = stack.ErrScopeMismatch

	// ErrClock matches every *ClockError with errors.Is.
	ErrClock = stack.ErrClock
)
