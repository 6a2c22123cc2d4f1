package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// benchStats summarizes the wall times of repeated benchmark runs.
type benchStats struct {
	Min, Max, Mean, Median, Stdev time.Duration
	PerRecord                     float64 // nanoseconds
}

func computeBenchStats(runs []time.Duration, records int) benchStats {
	if len(runs) == 0 {
		return benchStats{}
	}
	sorted := slices.Clone(runs)
	slices.Sort(sorted)

	var sum float64
	for _, d := range sorted {
		sum += float64(d)
	}
	mean := sum / float64(len(sorted))

	var median float64
	if n := len(sorted); n%2 == 1 {
		median = float64(sorted[n/2])
	} else {
		median = (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
	}

	// sample standard deviation; a single run has none
	var stdev float64
	if len(sorted) >= 2 {
		var sq float64
		for _, d := range sorted {
			diff := float64(d) - mean
			sq += diff * diff
		}
		stdev = math.Sqrt(sq / float64(len(sorted)-1))
	}

	st := benchStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   time.Duration(mean),
		Median: time.Duration(median),
		Stdev:  time.Duration(stdev),
	}
	if records > 0 {
		st.PerRecord = mean / float64(records)
	}
	return st
}

var (
	benchHeaders = []string{"version", "enabled", "nrecords", "min [ms]", "max [ms]", "mean [ms]", "median [ms]", "stdev [ms]", "per_record[ns]"}
	benchWidths  = []int{10, 7, 12, 10, 10, 10, 12, 13, 13}
)

func benchRow(ver, mode string, records int, st benchStats) []string {
	ms := func(d time.Duration) string {
		return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
	}
	return []string{
		ver,
		mode,
		message.NewPrinter(language.English).Sprintf("%d", records),
		ms(st.Min), ms(st.Max), ms(st.Mean), ms(st.Median), ms(st.Stdev),
		fmt.Sprintf("%.3f", st.PerRecord),
	}
}

func formatRow(row []string, widths []int) string {
	cells := make([]string, len(row))
	for i, v := range row {
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		cells[i] = fmt.Sprintf("%-*s", w, v)
	}
	return strings.Join(cells, " | ")
}

func benchRule(widths []int) string {
	total := 3 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	return strings.Repeat("-", total)
}

// writeBenchTable writes the header, the rule, and row. With header false
// only row is written, for appending to an existing results file.
func writeBenchTable(w io.Writer, row []string, header bool) error {
	var b strings.Builder
	if header {
		b.WriteString(formatRow(benchHeaders, benchWidths))
		b.WriteByte('\n')
		b.WriteString(benchRule(benchWidths))
		b.WriteByte('\n')
	}
	b.WriteString(formatRow(row, benchWidths))
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
