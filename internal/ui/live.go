// Package ui holds the Bubble Tea views of the CLI.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Event reports workload progress to the live view.
type Event struct {
	Stage string // workload stage currently running
	Done  int    // finished iterations
	Total int    // planned iterations, 0 if unknown
}

// SummaryFunc renders the current timing summary for the given width.
type SummaryFunc func(width int) string

type liveModel struct {
	title    string
	events   <-chan Event
	summary  SummaryFunc
	refresh  time.Duration
	spinner  spinner.Model
	prog     progress.Model
	stage    string
	body     string
	width    int
	done     bool
	quitting bool
}

type eventMsg Event
type doneMsg struct{}
type refreshMsg time.Time

// NewLiveModel returns a Bubble Tea model that re-renders summary every
// refresh interval while the workload feeding events runs. The program quits
// once events is closed, or on q / ctrl+c.
func NewLiveModel(title string, events <-chan Event, summary SummaryFunc, refresh time.Duration) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	if refresh <= 0 {
		refresh = 250 * time.Millisecond
	}
	return &liveModel{
		title:   title,
		events:  events,
		summary: summary,
		refresh: refresh,
		spinner: sp,
		prog:    prog,
		width:   80,
	}
}

// Interrupted reports whether the user quit before the workload finished.
func Interrupted(m tea.Model) bool {
	lm, ok := m.(*liveModel)
	return ok && lm.quitting && !lm.done
}

func (m *liveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent(), m.tick())
}

func (m *liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		m.body = m.summary(m.width)
		return m, tea.Quit
	case refreshMsg:
		if m.done {
			return m, nil
		}
		m.body = m.summary(m.width)
		return m, m.tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *liveModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stage != "" {
		header = fmt.Sprintf("%s (%s)", header, truncate(m.stage, m.width/2))
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	if m.body != "" {
		b.WriteString(m.body)
		if !strings.HasSuffix(m.body, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	if !m.done {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("q: quit"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *liveModel) applyEvent(ev Event) tea.Cmd {
	if ev.Stage != "" {
		m.stage = ev.Stage
	}
	if ev.Total <= 0 {
		return nil
	}
	pct := float64(ev.Done) / float64(ev.Total)
	return m.prog.SetPercent(min(max(pct, 0), 1))
}

func (m *liveModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *liveModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
