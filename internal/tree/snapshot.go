package tree

import (
	"time"

	"github.com/skst328/scope-timer/internal/stats"
)

// Snapshot is an immutable copy of the tree. Roots and children keep the
// order in which their paths were first seen.
type Snapshot struct {
	Taken time.Time       `msgpack:"taken"`
	Roots []*SnapshotNode `msgpack:"roots"`
}

// SnapshotNode is one call path with its statistics.
type SnapshotNode struct {
	Name     string            `msgpack:"name"`
	Path     []string          `msgpack:"path"`
	Stats    stats.Accumulator `msgpack:"stats"`
	Children []*SnapshotNode   `msgpack:"children,omitempty"`
}

// Empty reports whether the snapshot holds no nodes.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Roots) == 0
}

// Walk visits every node depth-first, parents before children. fn receives
// the node and its parent (nil for roots). Returning false skips the
// node's children.
func (s *Snapshot) Walk(fn func(n, parent *SnapshotNode) bool) {
	if s == nil {
		return
	}
	var visit func(n, parent *SnapshotNode)
	visit = func(n, parent *SnapshotNode) {
		if !fn(n, parent) {
			return
		}
		for _, c := range n.Children {
			visit(c, n)
		}
	}
	for _, r := range s.Roots {
		visit(r, nil)
	}
}

// Find returns the node for path, or nil.
func (s *Snapshot) Find(path []string) *SnapshotNode {
	if s == nil || len(path) == 0 {
		return nil
	}
	level := s.Roots
	var found *SnapshotNode
	for _, name := range path {
		found = nil
		for _, n := range level {
			if n.Name == name {
				found = n
				break
			}
		}
		if found == nil {
			return nil
		}
		level = found.Children
	}
	return found
}

// Len counts the nodes in the snapshot.
func (s *Snapshot) Len() int {
	count := 0
	s.Walk(func(*SnapshotNode, *SnapshotNode) bool {
		count++
		return true
	})
	return count
}
