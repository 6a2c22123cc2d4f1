package trace

// MultiTracer fans out trace events to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
}

// NewMultiTracer creates a new MultiTracer that emits to all provided tracers.
func NewMultiTracer(tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers}
}

// Emit sends the event to all underlying tracers. Each receives its own
// copy, since tracers may stamp Seq.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

// Flush flushes all underlying tracers.
func (t *MultiTracer) Flush() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying tracers.
func (t *MultiTracer) Close() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Enabled returns true if any underlying tracer is active.
func (t *MultiTracer) Enabled() bool {
	for _, tr := range t.tracers {
		if tr.Enabled() {
			return true
		}
	}
	return false
}

// Ring returns the first RingTracer among the underlying tracers.
func (t *MultiTracer) Ring() *RingTracer {
	for _, tr := range t.tracers {
		if r, ok := tr.(*RingTracer); ok {
			return r
		}
	}
	return nil
}
