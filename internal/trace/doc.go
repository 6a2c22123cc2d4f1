// Package trace records scope enter/exit events for debugging instrumentation.
//
// A Tracer is attached to a Timer and receives one Event per Enter, Exit,
// mismatched Exit and Reset. Events can be streamed (text or NDJSON) or kept
// in a ring buffer so the recent history of a goroutine can be dumped when a
// mismatch is detected.
//
// # Usage
//
//	tr, err := trace.New(trace.Config{Mode: trace.ModeRing})
//	t := scopetimer.New(scopetimer.WithTracer(tr))
//
// The CLI exposes the same choice through --trace and --trace-mode:
//
//	scopetimer demo --trace=events.ndjson --trace-mode=both
//
// # Implementations
//
//   - Nop: drops everything; used when tracing is off
//   - StreamTracer: writes each event immediately
//   - RingTracer: keeps the last N events in memory
//   - MultiTracer: fans out to several tracers
package trace
