// Package report turns an aggregation snapshot into ordered, backend
// agnostic rows with percentages and a shared time format.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/skst328/scope-timer/internal/tree"
)

// Options control statistics selection and number formatting.
type Options struct {
	Unit      Unit
	Precision int
	Verbose   bool
}

// DefaultOptions returns auto unit, auto precision, non-verbose.
func DefaultOptions() Options {
	return Options{Unit: UnitAuto, Precision: PrecisionAuto}
}

// Row is one node of the report in depth-first order.
type Row struct {
	Depth  int
	Name   string
	Path   []string
	Parent int // index of the parent row, -1 for roots
	Last   bool

	Count    int64
	Total    time.Duration
	Min      time.Duration
	Max      time.Duration
	Mean     time.Duration
	Variance float64 // seconds²

	// Percent is 100*Total/parent.Total. It is NaN when the parent total is
	// zero and unset (HasPercent false) for roots.
	Percent    float64
	HasPercent bool
}

// PercentLabel renders the percent column: "(42%)", "(--%)" for a
// non-finite value, or "" for roots.
func (r Row) PercentLabel() string {
	if !r.HasPercent {
		return ""
	}
	if math.IsNaN(r.Percent) || math.IsInf(r.Percent, 0) {
		return "(--%)"
	}
	return fmt.Sprintf("(%.0f%%)", math.RoundToEven(r.Percent))
}

// OpenScope is a scope that was still open when the report was built.
type OpenScope struct {
	Goroutine uint64
	Path      []string
}

// Name returns the innermost scope name.
func (o OpenScope) Name() string {
	if len(o.Path) == 0 {
		return ""
	}
	return o.Path[len(o.Path)-1]
}

// Report is the full, render-ready result.
type Report struct {
	Format  TimeFormat
	Verbose bool
	Rows    []Row
	Roots   int
	Overall time.Duration // sum of root totals
	Open    []OpenScope
	Taken   time.Time
}

// Empty reports whether there is nothing to show.
func (r *Report) Empty() bool {
	return r == nil || (len(r.Rows) == 0 && len(r.Open) == 0)
}

// Build walks snap depth-first. It only reads the snapshot.
func Build(snap *tree.Snapshot, opts Options, open []OpenScope) *Report {
	rep := &Report{
		Verbose: opts.Verbose,
		Open:    open,
	}
	if snap != nil {
		rep.Taken = snap.Taken
		rep.Roots = len(snap.Roots)
	}

	var worst time.Duration
	if snap != nil {
		for _, root := range snap.Roots {
			rep.Overall += root.Stats.Total
			if root.Stats.Total > worst {
				worst = root.Stats.Total
			}
		}
	}
	rep.Format = InferFormat(worst, opts.Unit, opts.Precision)

	var visit func(n *tree.SnapshotNode, parent int, depth int, last bool)
	visit = func(n *tree.SnapshotNode, parent int, depth int, last bool) {
		acc := n.Stats
		row := Row{
			Depth:    depth,
			Name:     n.Name,
			Path:     n.Path,
			Parent:   parent,
			Last:     last,
			Count:    acc.Count,
			Total:    acc.Total,
			Min:      acc.Min,
			Max:      acc.Max,
			Mean:     acc.Mean(),
			Variance: acc.Variance(),
		}
		if parent >= 0 {
			row.HasPercent = true
			row.Percent = percentOf(acc.Total, rep.Rows[parent].Total)
		}
		idx := len(rep.Rows)
		rep.Rows = append(rep.Rows, row)
		for i, c := range n.Children {
			visit(c, idx, depth+1, i == len(n.Children)-1)
		}
	}
	if snap != nil {
		for i, root := range snap.Roots {
			visit(root, -1, 0, i == len(snap.Roots)-1)
		}
	}
	return rep
}

func percentOf(part, whole time.Duration) float64 {
	if whole <= 0 {
		return math.NaN()
	}
	return 100 * float64(part) / float64(whole)
}
