package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/skst328/scope-timer/internal/logger"
	"github.com/skst328/scope-timer/internal/tree"
)

func sampleTree() *tree.Tree {
	tr := tree.New()
	tr.Merge([]string{"compute", "matmul"}, time.Millisecond)
	tr.Merge([]string{"compute", "matmul"}, 3*time.Millisecond)
	tr.Merge([]string{"compute"}, 5*time.Millisecond)
	tr.Merge([]string{"orphan", "child"}, time.Millisecond)
	return tr
}

func gather(t *testing.T, c prometheus.Collector) map[string]*dto.MetricFamily {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func valueFor(mf *dto.MetricFamily, path string) (float64, bool) {
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "path" && lp.GetValue() == path {
				if c := m.GetCounter(); c != nil {
					return c.GetValue(), true
				}
				return m.GetGauge().GetValue(), true
			}
		}
	}
	return 0, false
}

func TestCollectorExportsCompletedPaths(t *testing.T) {
	tr := sampleTree()
	fams := gather(t, NewCollector(tr.Snapshot, nil))

	tests := []struct {
		metric string
		path   string
		want   float64
	}{
		{"scopetimer_scope_calls_total", "compute/matmul", 2},
		{"scopetimer_scope_seconds_total", "compute/matmul", 0.004},
		{"scopetimer_scope_min_seconds", "compute/matmul", 0.001},
		{"scopetimer_scope_max_seconds", "compute/matmul", 0.003},
		{"scopetimer_scope_calls_total", "compute", 1},
		{"scopetimer_scope_calls_total", "orphan/child", 1},
	}
	for _, tt := range tests {
		mf, ok := fams[tt.metric]
		if !ok {
			t.Fatalf("metric %s missing", tt.metric)
		}
		got, ok := valueFor(mf, tt.path)
		if !ok {
			t.Errorf("%s{path=%q} missing", tt.metric, tt.path)
			continue
		}
		if diff := got - tt.want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("%s{path=%q} = %v, want %v", tt.metric, tt.path, got, tt.want)
		}
	}

	if _, ok := valueFor(fams["scopetimer_scope_calls_total"], "orphan"); ok {
		t.Error("prefix node without completions was exported")
	}
}

func TestCollectorFollowsReset(t *testing.T) {
	tr := sampleTree()
	c := NewCollector(tr.Snapshot, prometheus.Labels{"service": "test"})
	tr.Reset()
	if fams := gather(t, c); len(fams) != 0 {
		t.Errorf("expected no metrics after reset, got %d families", len(fams))
	}
}

func TestPathLabel(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a/b/c"},
		{[]string{"io/read"}, `io\/read`},
		{[]string{"io", "read"}, "io/read"},
		{[]string{`a\`, "b"}, `a\\/b`},
		{[]string{`a\/b`}, `a\\\/b`},
	}
	for _, tt := range tests {
		if got := PathLabel(tt.path); got != tt.want {
			t.Errorf("PathLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCollectorKeepsSlashNamesDistinct(t *testing.T) {
	tr := tree.New()
	tr.Merge([]string{"io/read"}, time.Millisecond)
	tr.Merge([]string{"io", "read"}, 2*time.Millisecond)

	fams := gather(t, NewCollector(tr.Snapshot, nil))
	calls := fams["scopetimer_scope_calls_total"]
	if got := len(calls.GetMetric()); got != 2 {
		t.Fatalf("calls series = %d, want 2", got)
	}
	total := fams["scopetimer_scope_seconds_total"]
	if v, ok := valueFor(total, `io\/read`); !ok || v != 0.001 {
		t.Errorf("io\\/read total = %v, %v", v, ok)
	}
	if v, ok := valueFor(total, "io/read"); !ok || v != 0.002 {
		t.Errorf("io/read total = %v, %v", v, ok)
	}
}

func TestServerServesMetrics(t *testing.T) {
	tr := sampleTree()
	srv, err := Listen("127.0.0.1:0", NewRegistry(NewCollector(tr.Snapshot, nil)), logger.Discard())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `scopetimer_scope_calls_total{path="compute/matmul"} 2`) {
		t.Errorf("metrics body missing scope counter:\n%s", body)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve: %v", err)
	}
}
