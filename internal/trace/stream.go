package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	err    error // first write error, reported by Flush
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, format Format) *StreamTracer {
	return &StreamTracer{w: w, format: format}
}

// Emit writes an event to the output. Write errors never reach the caller
// of Enter/Exit; the first one is kept for Flush.
func (t *StreamTracer) Emit(ev *Event) {
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.w.Write(data); err != nil {
		t.err = err
	}
}

// Flush reports the first write error and flushes the writer if it can.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	err := t.err
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	flushErr := t.Flush()
	if closer, ok := t.w.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return flushErr
}

// Enabled always returns true.
func (t *StreamTracer) Enabled() bool {
	return true
}
