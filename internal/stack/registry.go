package stack

import (
	"sync"
	"sync/atomic"
)

// Registry maps goroutine IDs to their stacks. A stack is created on the
// first Enter of a goroutine and dropped again once its last scope closes, so
// the registry only holds goroutines that currently have open scopes.
type Registry struct {
	stacks sync.Map // uint64 -> *Stack
	gen    atomic.Uint64
	pool   sync.Pool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Acquire returns the stack for gid, creating it if needed. Only the
// goroutine gid may call Acquire with its own ID.
func (r *Registry) Acquire(gid uint64) *Stack {
	if v, ok := r.stacks.Load(gid); ok {
		return v.(*Stack)
	}
	s, _ := r.pool.Get().(*Stack)
	if s == nil {
		s = newStack(gid)
	}
	s.gid = gid
	r.stacks.Store(gid, s)
	return s
}

// Lookup returns the stack for gid or nil.
func (r *Registry) Lookup(gid uint64) *Stack {
	v, ok := r.stacks.Load(gid)
	if !ok {
		return nil
	}
	return v.(*Stack)
}

// Release drops s from the registry if it has no open scopes left.
func (r *Registry) Release(s *Stack) {
	if s == nil || s.Depth() != 0 {
		return
	}
	if r.stacks.CompareAndDelete(s.gid, s) {
		r.pool.Put(s)
	}
}

// Reset forgets every stack and starts a new generation. Scopes that were
// open before the reset can no longer be closed through the registry.
func (r *Registry) Reset() {
	r.gen.Add(1)
	r.stacks.Clear()
}

// Generation increments on every Reset.
func (r *Registry) Generation() uint64 {
	return r.gen.Load()
}

// Active returns the number of goroutines with open scopes.
func (r *Registry) Active() int {
	n := 0
	r.stacks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
