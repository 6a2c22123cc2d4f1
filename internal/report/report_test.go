package report

import (
	"math"
	"testing"
	"time"

	"github.com/skst328/scope-timer/internal/tree"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		worst     time.Duration
		unit      Unit
		precision int
		wantUnit  Unit
		wantPrec  int
	}{
		{2500 * time.Millisecond, UnitAuto, PrecisionAuto, UnitSecond, 5},
		{1500 * time.Second, UnitAuto, PrecisionAuto, UnitSecond, 2},
		{500 * time.Millisecond, UnitAuto, PrecisionAuto, UnitMillisecond, 3},
		{50 * time.Millisecond, UnitAuto, PrecisionAuto, UnitMillisecond, 4},
		{1500 * time.Microsecond, UnitAuto, PrecisionAuto, UnitMillisecond, 5},
		{500 * time.Microsecond, UnitAuto, PrecisionAuto, UnitMicrosecond, 1},
		{10 * time.Second, UnitMillisecond, 3, UnitMillisecond, 3},
		{0, UnitAuto, PrecisionAuto, UnitMicrosecond, 1},
		{1234567 * time.Second, UnitAuto, PrecisionAuto, UnitSecond, 0},
		{500 * time.Nanosecond, UnitAuto, PrecisionAuto, UnitMicrosecond, 1},
		{100 * time.Millisecond, UnitSecond, PrecisionAuto, UnitSecond, 6},
	}
	for _, tt := range tests {
		f := InferFormat(tt.worst, tt.unit, tt.precision)
		if f.Unit != tt.wantUnit || f.Precision != tt.wantPrec {
			t.Errorf("InferFormat(%v, %q, %d) = %s/%d, want %s/%d",
				tt.worst, tt.unit, tt.precision, f.Unit, f.Precision, tt.wantUnit, tt.wantPrec)
		}
	}
}

func TestNumDigits(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{0.999, 0},
		{1, 1},
		{9.9, 1},
		{-42.5, 2},
		{123456.7, 6},
		{1e30, precisionCap},
	}
	for _, tt := range tests {
		if got := numDigits(tt.v); got != tt.want {
			t.Errorf("numDigits(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestTimeFormat(t *testing.T) {
	f := TimeFormat{Unit: UnitMillisecond, Scale: 1e3, Precision: 3}
	if got := f.Format(12345 * time.Microsecond); got != "12.345ms" {
		t.Errorf("Format = %q", got)
	}
	// 1e-6 s² == 1 ms²
	if got := f.FormatVariance(1e-6); got != "1.000ms²" {
		t.Errorf("FormatVariance = %q", got)
	}
}

func TestParseUnitAndPrecision(t *testing.T) {
	for in, want := range map[string]Unit{"": UnitAuto, "AUTO": UnitAuto, "s": UnitSecond, "ms": UnitMillisecond, "us": UnitMicrosecond, "µs": UnitMicrosecond} {
		got, err := ParseUnit(in)
		if err != nil || got != want {
			t.Errorf("ParseUnit(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseUnit("min"); err == nil {
		t.Error("ParseUnit(min) should fail")
	}
	if p, err := ParsePrecision("auto"); err != nil || p != PrecisionAuto {
		t.Errorf("ParsePrecision(auto) = %d, %v", p, err)
	}
	if p, err := ParsePrecision("3"); err != nil || p != 3 {
		t.Errorf("ParsePrecision(3) = %d, %v", p, err)
	}
	for _, bad := range []string{"-1", "x"} {
		if _, err := ParsePrecision(bad); err == nil {
			t.Errorf("ParsePrecision(%q) should fail", bad)
		}
	}
}

func pipelineSnapshot() *tree.Snapshot {
	tr := tree.New()
	tr.Merge([]string{"pipeline", "preprocess", "load_data"}, 10*time.Millisecond)
	tr.Merge([]string{"pipeline", "preprocess", "clean_data"}, 15*time.Millisecond)
	tr.Merge([]string{"pipeline", "preprocess"}, 25*time.Millisecond)
	tr.Merge([]string{"pipeline", "postprocess", "save_results"}, 5*time.Millisecond)
	tr.Merge([]string{"pipeline", "postprocess"}, 5*time.Millisecond)
	tr.Merge([]string{"pipeline"}, 40*time.Millisecond)
	return tr.Snapshot()
}

func TestBuildRowsDepthFirst(t *testing.T) {
	rep := Build(pipelineSnapshot(), DefaultOptions(), nil)

	want := []struct {
		name  string
		depth int
	}{
		{"pipeline", 0}, {"preprocess", 1}, {"load_data", 2}, {"clean_data", 2},
		{"postprocess", 1}, {"save_results", 2},
	}
	if len(rep.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rep.Rows), len(want))
	}
	for i, w := range want {
		if rep.Rows[i].Name != w.name || rep.Rows[i].Depth != w.depth {
			t.Errorf("row %d = %s@%d, want %s@%d", i, rep.Rows[i].Name, rep.Rows[i].Depth, w.name, w.depth)
		}
	}
	if rep.Rows[0].HasPercent {
		t.Error("root row must not carry a percent")
	}
	if got := rep.Rows[1].Percent; math.Abs(got-62.5) > 1e-9 {
		t.Errorf("preprocess percent = %v, want 62.5", got)
	}
	if got := rep.Rows[2].PercentLabel(); got != "(40%)" {
		t.Errorf("load_data label = %q", got)
	}
	if !rep.Rows[3].Last || rep.Rows[2].Last {
		t.Error("Last flags wrong among preprocess children")
	}
	if rep.Overall != 40*time.Millisecond || rep.Roots != 1 {
		t.Errorf("Overall/Roots = %v/%d", rep.Overall, rep.Roots)
	}
	if rep.Format.Unit != UnitMillisecond || rep.Format.Precision != 4 {
		t.Errorf("format = %+v", rep.Format)
	}
	if rep.Rows[2].Parent != 1 || rep.Rows[3].Parent != 1 || rep.Rows[0].Parent != -1 {
		t.Errorf("parents = %d %d %d", rep.Rows[0].Parent, rep.Rows[2].Parent, rep.Rows[3].Parent)
	}
}

func TestBuildZeroParentTotalUsesPlaceholder(t *testing.T) {
	tr := tree.New()
	// parent prefix exists but never completed
	tr.Merge([]string{"parent", "child"}, time.Millisecond)
	rep := Build(tr.Snapshot(), DefaultOptions(), nil)

	child := rep.Rows[1]
	if !math.IsNaN(child.Percent) {
		t.Errorf("Percent = %v, want NaN", child.Percent)
	}
	if got := child.PercentLabel(); got != "(--%)" {
		t.Errorf("PercentLabel = %q, want (--%%)", got)
	}
	if rep.Rows[0].Count != 0 || rep.Rows[0].Mean != 0 {
		t.Errorf("uncompleted parent = %+v", rep.Rows[0])
	}
}

func TestBuildChildrenNeedNotSumToParent(t *testing.T) {
	tr := tree.New()
	tr.Merge([]string{"p", "a"}, 8*time.Millisecond)
	tr.Merge([]string{"p", "b"}, 8*time.Millisecond)
	tr.Merge([]string{"p"}, 10*time.Millisecond)
	rep := Build(tr.Snapshot(), DefaultOptions(), nil)

	sum := 0.0
	for _, r := range rep.Rows[1:] {
		if r.Percent < 0 {
			t.Errorf("negative percent %v", r.Percent)
		}
		sum += r.Percent
	}
	if math.Abs(sum-160) > 1e-9 {
		t.Errorf("sum of child percents = %v, want 160", sum)
	}
}

func TestBuildEmpty(t *testing.T) {
	rep := Build(tree.New().Snapshot(), DefaultOptions(), nil)
	if !rep.Empty() || rep.Overall != 0 {
		t.Errorf("report not empty: %+v", rep)
	}
	if Build(nil, DefaultOptions(), nil).Rows != nil {
		t.Error("nil snapshot should yield no rows")
	}
	withOpen := Build(nil, DefaultOptions(), []OpenScope{{Path: []string{"a", "b"}}})
	if withOpen.Empty() || withOpen.Open[0].Name() != "b" {
		t.Errorf("open scopes not carried: %+v", withOpen.Open)
	}
}

func TestBuildVerboseStats(t *testing.T) {
	tr := tree.New()
	for _, d := range []time.Duration{time.Millisecond, 3 * time.Millisecond} {
		tr.Merge([]string{"x"}, d)
	}
	rep := Build(tr.Snapshot(), Options{Unit: UnitAuto, Precision: 2, Verbose: true}, nil)
	r := rep.Rows[0]
	if !rep.Verbose || r.Min != time.Millisecond || r.Max != 3*time.Millisecond || r.Mean != 2*time.Millisecond {
		t.Errorf("row = %+v", r)
	}
	if math.Abs(r.Variance-1e-6) > 1e-15 {
		t.Errorf("Variance = %g, want 1e-6", r.Variance)
	}
	if rep.Format.Precision != 2 {
		t.Errorf("explicit precision ignored: %d", rep.Format.Precision)
	}
}
