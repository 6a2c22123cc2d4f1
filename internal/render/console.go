package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/skst328/scope-timer/internal/report"
)

type palette struct {
	label  func(a ...interface{}) string
	guide  func(a ...interface{}) string
	warn   func(a ...interface{}) string
	footer func(a ...interface{}) string
	rule   lipgloss.Style
	title  lipgloss.Style
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	p := palette{
		label:  mk(color.FgGreen),
		guide:  mk(color.FgHiBlue),
		warn:   mk(color.FgYellow),
		footer: mk(color.FgHiRed),
		rule:   lipgloss.NewStyle(),
		title:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
	if enabled {
		p.rule = p.rule.Foreground(lipgloss.Color("244"))
		p.title = p.title.Foreground(lipgloss.Color("7")).Bold(true)
	}
	return p
}

// Console writes the styled summary. With Color off it produces exactly the
// plain-text rendering.
func Console(w io.Writer, rep *report.Report, style Style) error {
	p := newPalette(style.Color)
	lines := layout(rep)

	width := minRuleSize
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(l.plain()))
	}

	ew := &errWriter{w: w}
	divider := func() {
		if style.Divider == DividerBlank {
			ew.println("")
			return
		}
		ew.println(p.rule.Render(strings.Repeat("─", width)))
	}

	ew.println(p.title.Render(title))

	if warns := warningLines(rep); len(warns) > 0 {
		for _, msg := range warns {
			ew.println(p.warn(msg))
		}
		divider()
	}

	for i, l := range lines {
		if l.root && i > 0 {
			divider()
		}
		ew.println(styledLine(p, l))
	}
	if len(lines) > 0 {
		divider()
	}

	ew.println(p.footer(footerLine(rep)))
	return ew.err
}

func styledLine(p palette, l line) string {
	var b strings.Builder
	if l.guide != "" {
		b.WriteString(p.guide(l.guide))
	}
	b.WriteString(p.label(l.label))
	rest := l
	rest.guide, rest.label = "", ""
	b.WriteString(rest.plain())
	return b.String()
}

// Text writes the uncolored summary, as saved to .txt files.
func Text(w io.Writer, rep *report.Report, divider Divider) error {
	return Console(w, rep, Style{Divider: divider, Color: false})
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) println(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s+"\n")
}
