// Package render turns a report into console text, plain text, HTML or a
// msgpack snapshot. Every renderer is a pure function of its input.
package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/skst328/scope-timer/internal/report"
)

// Divider selects what separates top-level roots.
type Divider string

const (
	DividerRule  Divider = "rule"
	DividerBlank Divider = "blank"
)

// ParseDivider converts a string to Divider.
func ParseDivider(s string) (Divider, error) {
	switch Divider(strings.ToLower(strings.TrimSpace(s))) {
	case "", DividerRule:
		return DividerRule, nil
	case DividerBlank:
		return DividerBlank, nil
	default:
		return "", fmt.Errorf("invalid divider %q (expected: rule|blank)", s)
	}
}

// Style holds the formatting-only knobs.
type Style struct {
	Divider Divider
	Color   bool
}

const (
	title       = "ScopeTimer Summary"
	minRuleSize = 40
)

var counts = message.NewPrinter(language.English)

// line is one report row split into aligned columns.
type line struct {
	depth   int
	root    bool
	guide   string
	label   string
	time    string
	count   string
	percent string
	detail  string
}

// layout formats every row and pads label, time and count columns to the
// widest value among the row's siblings.
func layout(rep *report.Report) []line {
	lines := make([]line, len(rep.Rows))
	f := rep.Format

	for i, row := range rep.Rows {
		l := line{
			depth:   row.Depth,
			root:    row.Parent < 0,
			guide:   guideFor(rep, i),
			label:   "[" + norm.NFC.String(row.Name) + "]",
			time:    f.Format(row.Total),
			count:   counts.Sprintf("%d", row.Count) + "x",
			percent: row.PercentLabel(),
		}
		if rep.Verbose {
			l.detail = fmt.Sprintf("[min=%s, max=%s, avg=%s, var=%s]",
				f.Format(row.Min), f.Format(row.Max), f.Format(row.Mean), f.FormatVariance(row.Variance))
		}
		lines[i] = l
	}

	groups := make(map[int][]int)
	for i, row := range rep.Rows {
		groups[row.Parent] = append(groups[row.Parent], i)
	}
	for parent, members := range groups {
		if parent < 0 {
			// roots are aligned on their own, like separate trees
			for _, i := range members {
				padGroup(lines, []int{i})
			}
			continue
		}
		padGroup(lines, members)
	}
	return lines
}

func padGroup(lines []line, members []int) {
	var labelW, timeW, countW int
	for _, i := range members {
		labelW = max(labelW, runewidth.StringWidth(lines[i].label))
		timeW = max(timeW, runewidth.StringWidth(lines[i].time))
		countW = max(countW, runewidth.StringWidth(lines[i].count))
	}
	for _, i := range members {
		lines[i].label = padRight(lines[i].label, labelW+1)
		lines[i].time = padLeft(lines[i].time, timeW)
		lines[i].count = padLeft(lines[i].count, countW)
	}
}

// guideFor builds the tree prefix ("│   ├── ") for row i.
func guideFor(rep *report.Report, i int) string {
	row := rep.Rows[i]
	if row.Parent < 0 {
		return ""
	}
	var parts []string
	if row.Last {
		parts = append(parts, "└── ")
	} else {
		parts = append(parts, "├── ")
	}
	for p := row.Parent; p >= 0 && rep.Rows[p].Parent >= 0; p = rep.Rows[p].Parent {
		if rep.Rows[p].Last {
			parts = append(parts, "    ")
		} else {
			parts = append(parts, "│   ")
		}
	}
	var b strings.Builder
	for j := len(parts) - 1; j >= 0; j-- {
		b.WriteString(parts[j])
	}
	return b.String()
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

// plain joins the columns without styling.
func (l line) plain() string {
	var b strings.Builder
	b.WriteString(l.guide)
	b.WriteString(l.label)
	b.WriteString(l.time)
	b.WriteString(" / ")
	b.WriteString(l.count)
	if l.percent != "" {
		b.WriteByte(' ')
		b.WriteString(l.percent)
	}
	if l.detail != "" {
		b.WriteString("  ")
		b.WriteString(l.detail)
	}
	return b.String()
}

func warningLines(rep *report.Report) []string {
	if len(rep.Open) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("WARNING: %d unfinished scope(s) detected. They are excluded from totals.", len(rep.Open))}
	for _, o := range rep.Open {
		out = append(out, fmt.Sprintf("- unclosed scope: '%s'", o.Name()))
	}
	return out
}

func footerLine(rep *report.Report) string {
	if rep.Overall > 0 {
		return "overall_time: " + rep.Format.Format(rep.Overall)
	}
	return "overall_time: N/A (no completed root scopes)"
}
