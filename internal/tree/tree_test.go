package tree

import (
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestKeyOfDistinguishesSegments(t *testing.T) {
	cases := [][2][]string{
		{{"a:b"}, {"a", "b"}},
		{{"ab", "c"}, {"a", "bc"}},
		{{""}, {}},
		{{"1:x"}, {"x"}},
	}
	for _, tc := range cases {
		if KeyOf(tc[0]) == KeyOf(tc[1]) {
			t.Errorf("KeyOf(%q) == KeyOf(%q)", tc[0], tc[1])
		}
	}
	if KeyOf([]string{"a", "b"}) != AppendKey(AppendKey("", "a"), "b") {
		t.Error("KeyOf must agree with incremental AppendKey")
	}
}

func TestMergeCreatesOneNodePerPath(t *testing.T) {
	tr := New()
	tr.Merge([]string{"pipeline", "preprocess", "load_data"}, 10*time.Millisecond)
	tr.Merge([]string{"pipeline", "preprocess", "clean_data"}, 15*time.Millisecond)
	tr.Merge([]string{"pipeline", "preprocess"}, 25*time.Millisecond)
	tr.Merge([]string{"pipeline"}, 30*time.Millisecond)

	if got := tr.Len(); got != 4 {
		t.Fatalf("Len = %d, want 4", got)
	}
	acc, ok := tr.Lookup([]string{"pipeline", "preprocess", "clean_data"})
	if !ok {
		t.Fatal("clean_data node missing")
	}
	if acc.Count != 1 || acc.Total != 15*time.Millisecond {
		t.Errorf("clean_data = %+v", acc)
	}
	if _, ok := tr.Lookup([]string{"preprocess"}); ok {
		t.Error("preprocess must not exist as a root")
	}

	snap := tr.Snapshot()
	if len(snap.Roots) != 1 || snap.Roots[0].Name != "pipeline" {
		t.Fatalf("roots = %+v", snap.Roots)
	}
	pre := snap.Find([]string{"pipeline", "preprocess"})
	if pre == nil || len(pre.Children) != 2 {
		t.Fatalf("preprocess children = %+v", pre)
	}
	if pre.Children[0].Name != "load_data" || pre.Children[1].Name != "clean_data" {
		t.Errorf("children not in first-seen order: %s, %s", pre.Children[0].Name, pre.Children[1].Name)
	}
}

func TestMergeSameNameAtDifferentDepths(t *testing.T) {
	tr := New()
	tr.Merge([]string{"step"}, time.Millisecond)
	tr.Merge([]string{"outer", "step"}, 2*time.Millisecond)
	tr.Merge([]string{"outer", "step", "step"}, 3*time.Millisecond)

	for _, p := range [][]string{{"step"}, {"outer", "step"}, {"outer", "step", "step"}} {
		acc, ok := tr.Lookup(p)
		if !ok || acc.Count != 1 {
			t.Errorf("Lookup(%v) = %+v, %v", p, acc, ok)
		}
	}
	// the prefix created on the way down has no completions of its own
	if acc, _ := tr.Lookup([]string{"outer"}); acc.Count != 0 {
		t.Errorf("outer Count = %d, want 0", acc.Count)
	}
}

func TestMergeOrderIndependence(t *testing.T) {
	type m struct {
		path []string
		d    time.Duration
	}
	var ms []m
	for i := 0; i < 50; i++ {
		ms = append(ms, m{[]string{"a"}, time.Duration(i+1) * time.Millisecond})
		ms = append(ms, m{[]string{"a", "b"}, time.Duration(2*i+1) * time.Microsecond})
	}

	build := func(order []m) *Tree {
		tr := New()
		for _, x := range order {
			tr.Merge(x.path, x.d)
		}
		return tr
	}
	shuffled := slices.Clone(ms)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	a, b := build(ms), build(shuffled)
	for _, p := range [][]string{{"a"}, {"a", "b"}} {
		x, _ := a.Lookup(p)
		y, _ := b.Lookup(p)
		if x.Count != y.Count || x.Total != y.Total || x.Min != y.Min || x.Max != y.Max {
			t.Errorf("%v: %+v != %+v", p, x, y)
		}
	}
}

func TestConcurrentFirstUseCreatesSingleNode(t *testing.T) {
	tr := New()
	const workers = 16
	const perWorker = 200

	start := make(chan struct{})
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			<-start
			for i := 0; i < perWorker; i++ {
				tr.Merge([]string{"root", "fresh", "leaf"}, time.Microsecond)
			}
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	snap := tr.Snapshot()
	if len(snap.Roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(snap.Roots))
	}
	if n := len(snap.Roots[0].Children); n != 1 {
		t.Fatalf("got %d children of root, want 1", n)
	}
	acc, _ := tr.Lookup([]string{"root", "fresh", "leaf"})
	if acc.Count != workers*perWorker {
		t.Errorf("Count = %d, want %d", acc.Count, workers*perWorker)
	}
	if acc.Total != time.Duration(workers*perWorker)*time.Microsecond {
		t.Errorf("Total = %v", acc.Total)
	}
}

func TestResetRacingMerges(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					tr.Merge([]string{"x", "y"}, time.Millisecond)
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		tr.Reset()
		snap := tr.Snapshot()
		snap.Walk(func(n, _ *SnapshotNode) bool {
			if n.Stats.Total != time.Duration(n.Stats.Count)*time.Millisecond {
				t.Errorf("torn node %v: %+v", n.Path, n.Stats)
			}
			return true
		})
	}
	close(stop)
	wg.Wait()
}

func TestResetIdempotent(t *testing.T) {
	tr := New()
	tr.Merge([]string{"a"}, time.Millisecond)
	tr.Reset()
	tr.Reset()
	if tr.Len() != 0 || !tr.Snapshot().Empty() {
		t.Fatal("tree not empty after reset")
	}
	tr.Merge([]string{"b"}, time.Millisecond)
	if tr.Len() != 1 {
		t.Errorf("Len = %d after reuse, want 1", tr.Len())
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	tr := New()
	tr.Merge([]string{"a"}, time.Millisecond)
	snap := tr.Snapshot()
	tr.Merge([]string{"a"}, time.Millisecond)
	tr.Merge([]string{"b"}, time.Millisecond)

	if snap.Roots[0].Stats.Count != 1 || len(snap.Roots) != 1 {
		t.Errorf("snapshot changed after later merges: %+v", snap.Roots)
	}
	if snap.Len() != 1 {
		t.Errorf("snapshot Len = %d, want 1", snap.Len())
	}
}

func TestMergeEmptyPathIgnored(t *testing.T) {
	tr := New()
	tr.Merge(nil, time.Second)
	if tr.Len() != 0 {
		t.Errorf("Len = %d, want 0", tr.Len())
	}
}
