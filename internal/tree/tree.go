// Package tree implements the process-wide aggregation tree: an arena of
// nodes keyed by call path, merged into from every goroutine.
//
// Locking: mu guards the arena structure (the map, root list and child
// lists). Merges into an existing node only need the read lock plus that
// node's own mutex; creating nodes and Reset take the write lock. A Reset can
// therefore never observe a node whose statistics are half updated.
package tree

import (
	"slices"
	"sync"
	"time"

	"github.com/skst328/scope-timer/internal/stats"
)

// Measurement is one completed scope.
//
// Key must equal KeyOf(Path). Path is only read during Record and may alias
// a caller-owned buffer.
type Measurement struct {
	Key     string
	Path    []string
	Elapsed time.Duration
}

type node struct {
	name     string
	path     []string
	children []*node

	mu  sync.Mutex
	acc stats.Accumulator
}

func (n *node) observe(d time.Duration) {
	n.mu.Lock()
	n.acc.Observe(d)
	n.mu.Unlock()
}

func (n *node) stats() stats.Accumulator {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.acc
}

// Tree aggregates measurements by call path. The zero value is not usable;
// call New.
type Tree struct {
	mu    sync.RWMutex
	nodes map[string]*node
	roots []*node
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// Merge records one measurement for path.
func (t *Tree) Merge(path []string, elapsed time.Duration) {
	if len(path) == 0 {
		return
	}
	t.Record(Measurement{Key: KeyOf(path), Path: path, Elapsed: elapsed})
}

// Record is Merge with a precomputed key.
func (t *Tree) Record(m Measurement) {
	if len(m.Path) == 0 {
		return
	}

	t.mu.RLock()
	if n, ok := t.nodes[m.Key]; ok {
		n.observe(m.Elapsed)
		t.mu.RUnlock()
		return
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// another goroutine may have created the path between the two locks
	n := t.ensure(m.Path)
	n.observe(m.Elapsed)
}

// ensure creates every missing node along path. Caller holds mu for writing.
func (t *Tree) ensure(path []string) *node {
	var parent *node
	key := ""
	for i, name := range path {
		key = AppendKey(key, name)
		n, ok := t.nodes[key]
		if !ok {
			n = &node{name: name, path: slices.Clone(path[:i+1])}
			t.nodes[key] = n
			if parent == nil {
				t.roots = append(t.roots, n)
			} else {
				parent.children = append(parent.children, n)
			}
		}
		parent = n
	}
	return parent
}

// Lookup returns the statistics recorded for exactly path.
func (t *Tree) Lookup(path []string) (stats.Accumulator, bool) {
	key := KeyOf(path)
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[key]
	if !ok {
		return stats.Accumulator{}, false
	}
	return n.stats(), true
}

// Len returns the number of distinct call paths in the tree.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Reset discards every node.
func (t *Tree) Reset() {
	t.mu.Lock()
	t.nodes = make(map[string]*node)
	t.roots = nil
	t.mu.Unlock()
}

// Snapshot copies the tree as of now. Measurements that finish after the
// read lock is taken are not included.
func (t *Tree) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := &Snapshot{
		Taken: time.Now(),
		Roots: make([]*SnapshotNode, 0, len(t.roots)),
	}
	for _, r := range t.roots {
		snap.Roots = append(snap.Roots, copyNode(r))
	}
	return snap
}

func copyNode(n *node) *SnapshotNode {
	out := &SnapshotNode{
		Name:  n.name,
		Path:  n.path,
		Stats: n.stats(),
	}
	if len(n.children) > 0 {
		out.Children = make([]*SnapshotNode, 0, len(n.children))
		for _, c := range n.children {
			out.Children = append(out.Children, copyNode(c))
		}
	}
	return out
}
