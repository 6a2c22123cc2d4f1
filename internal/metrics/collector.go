// Package metrics exports aggregated scope statistics as Prometheus metrics.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skst328/scope-timer/internal/tree"
)

// PathSeparator joins call path segments in the path label.
const PathSeparator = "/"

// Collector implements prometheus.Collector over point-in-time snapshots of
// the aggregation tree. Every scrape takes a fresh snapshot, so the exported
// values always agree with the text report.
type Collector struct {
	snapshot func() *tree.Snapshot

	callsDesc *prometheus.Desc
	totalDesc *prometheus.Desc
	minDesc   *prometheus.Desc
	maxDesc   *prometheus.Desc
}

// NewCollector creates a collector reading from snapshot. constLabels are
// attached to every metric.
func NewCollector(snapshot func() *tree.Snapshot, constLabels prometheus.Labels) *Collector {
	labels := []string{"path"}
	return &Collector{
		snapshot: snapshot,
		callsDesc: prometheus.NewDesc(
			"scopetimer_scope_calls_total",
			"Number of completed executions of the scope call path",
			labels, constLabels,
		),
		totalDesc: prometheus.NewDesc(
			"scopetimer_scope_seconds_total",
			"Total time spent in the scope call path",
			labels, constLabels,
		),
		minDesc: prometheus.NewDesc(
			"scopetimer_scope_min_seconds",
			"Shortest completed execution of the scope call path",
			labels, constLabels,
		),
		maxDesc: prometheus.NewDesc(
			"scopetimer_scope_max_seconds",
			"Longest completed execution of the scope call path",
			labels, constLabels,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.callsDesc
	ch <- c.totalDesc
	ch <- c.minDesc
	ch <- c.maxDesc
}

// Collect implements the prometheus.Collector interface. Prefix nodes with
// no completed execution are skipped.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.snapshot()
	snap.Walk(func(n, _ *tree.SnapshotNode) bool {
		acc := n.Stats
		if acc.Empty() {
			return true
		}
		path := PathLabel(n.Path)
		ch <- prometheus.MustNewConstMetric(c.callsDesc, prometheus.CounterValue, float64(acc.Count), path)
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.CounterValue, acc.Total.Seconds(), path)
		ch <- prometheus.MustNewConstMetric(c.minDesc, prometheus.GaugeValue, acc.Min.Seconds(), path)
		ch <- prometheus.MustNewConstMetric(c.maxDesc, prometheus.GaugeValue, acc.Max.Seconds(), path)
		return true
	})
}

var segmentEscaper = strings.NewReplacer(`\`, `\\`, PathSeparator, `\`+PathSeparator)

// PathLabel renders a call path for the path label. Backslashes and
// separators inside a segment are escaped, so distinct paths never share a
// label value.
func PathLabel(path []string) string {
	segs := make([]string, len(path))
	for i, s := range path {
		segs[i] = segmentEscaper.Replace(s)
	}
	return strings.Join(segs, PathSeparator)
}
