package workload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// recorder logs scope calls as "+name" / "-name".
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) Enter(name string) error {
	r.mu.Lock()
	r.calls = append(r.calls, "+"+name)
	r.mu.Unlock()
	return nil
}

func (r *recorder) Exit(name string) error {
	r.mu.Lock()
	r.calls = append(r.calls, "-"+name)
	r.mu.Unlock()
	return nil
}

// strictScoper fails every Exit of a scope named in failExit.
type strictScoper struct {
	recorder
	failExit string
}

var errExit = errors.New("exit failed")

func (s *strictScoper) Exit(name string) error {
	_ = s.recorder.Exit(name)
	if name == s.failExit {
		return errExit
	}
	return nil
}

func TestScopeJoinsExitErrorWithBodyError(t *testing.T) {
	s := &strictScoper{failExit: "load_data"}
	boom := errors.New("boom")
	err := scope(s, "load_data", func() error { return boom })
	if !errors.Is(err, boom) || !errors.Is(err, errExit) {
		t.Errorf("scope error = %v, want both body and exit errors", err)
	}
	if got := strings.Join(s.calls, " "); got != "+load_data -load_data" {
		t.Errorf("calls = %s", got)
	}

	if err := scope(s, "other", func() error { return boom }); !errors.Is(err, boom) || errors.Is(err, errExit) {
		t.Errorf("scope error = %v, want only the body error", err)
	}
}

func TestPipelineNesting(t *testing.T) {
	rec := &recorder{}
	var stages []string
	err := Pipeline(context.Background(), rec, 0, func(stage string, done, total int) {
		stages = append(stages, stage)
	})
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	want := "+pipeline +preprocess +load_data -load_data +clean_data -clean_data -preprocess " +
		"+postprocess +save_results -save_results -postprocess -pipeline"
	if got := strings.Join(rec.calls, " "); got != want {
		t.Errorf("calls:\n got %s\nwant %s", got, want)
	}
	if len(stages) != 4 || stages[0] != "load_data" {
		t.Errorf("progress stages = %v", stages)
	}
}

func TestComputeCounts(t *testing.T) {
	rec := &recorder{}
	if err := Compute(context.Background(), rec, 2, 0, nil); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	counts := map[string]int{}
	for _, c := range rec.calls {
		if strings.HasPrefix(c, "+") {
			counts[c[1:]]++
		}
	}
	if counts["compute"] != 2 || counts["matmul"] != 20 || counts["activation"] != 20 {
		t.Errorf("counts = %v", counts)
	}
}

func TestCancelledWorkloadStaysBalanced(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	err := Pipeline(ctx, rec, 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Pipeline = %v, want context.Canceled", err)
	}
	depth := 0
	for _, c := range rec.calls {
		if c[0] == '+' {
			depth++
		} else {
			depth--
		}
	}
	if depth != 0 {
		t.Errorf("unbalanced scopes: %v", rec.calls)
	}
}

func TestNestedScopesAndChecksum(t *testing.T) {
	sh := Shape{Outer: 2, Middle: 3, Inner: 4, Vec: 8}
	rec := &recorder{}
	instrumented, err := Nested(rec, sh)
	if err != nil {
		t.Fatal(err)
	}
	native, err := Nested(nil, sh)
	if err != nil {
		t.Fatal(err)
	}
	if instrumented != native {
		t.Errorf("checksum differs: %v vs %v", instrumented, native)
	}
	if got := len(rec.calls) / 2; got != sh.Scopes() {
		t.Errorf("scopes opened = %d, want %d", got, sh.Scopes())
	}
	if DefaultShape.Records() != 320000 {
		t.Errorf("Records = %d", DefaultShape.Records())
	}
}

func TestFanOut(t *testing.T) {
	var ran atomic.Int32
	err := FanOut(context.Background(), 4, func(ctx context.Context, worker int) error {
		ran.Add(1)
		return nil
	})
	if err != nil || ran.Load() != 4 {
		t.Errorf("FanOut = %v, ran %d", err, ran.Load())
	}

	boom := errors.New("boom")
	err = FanOut(context.Background(), 3, func(ctx context.Context, worker int) error {
		if worker == 1 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("FanOut error = %v", err)
	}
}
