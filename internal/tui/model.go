// Package tui provides the Bubble Tea progress view for a batch run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	logStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

const (
	minColWidth = 8
	maxColWidth = 28
)

type eventMsg batch.Event

type closedMsg struct{}

func waitForEvent(ch <-chan batch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// Model renders a running batch: a progress header, the streamed log lines
// and, once finished, the result table.
type Model struct {
	title  string
	events <-chan batch.Event

	index  int
	total  int
	counts map[batch.Status]int
	lines  []string

	log     viewport.Model
	results table.Model

	result *batch.Result
	err    error
	done   bool

	width  int
	height int
}

// NewModel builds a model that consumes events until the Done event.
func NewModel(title string, events <-chan batch.Event) *Model {
	m := &Model{
		title:  title,
		events: events,
		counts: map[batch.Status]int{},
		log:    viewport.New(80, 12),
		width:  80,
		height: 24,
	}
	m.results = table.New(table.WithHeight(8))
	m.results.SetStyles(resultTableStyles())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || (m.done && msg.Type == tea.KeyEnter) {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		if m.done {
			m.results, cmd = m.results.Update(msg)
		} else {
			m.log, cmd = m.log.Update(msg)
		}
		return m, cmd
	case eventMsg:
		m.apply(batch.Event(msg))
		if m.done {
			return m, nil
		}
		return m, waitForEvent(m.events)
	case closedMsg:
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(ev batch.Event) {
	switch ev.Kind {
	case batch.EventStarted:
		m.total = ev.Total
	case batch.EventFile:
		m.index, m.total = ev.Index, ev.Total
		m.counts[ev.Record.Status]++
		m.lines = append(m.lines, styleLine(ev.Record))
		m.log.SetContent(strings.Join(m.lines, "\n"))
		m.log.GotoBottom()
	case batch.EventDone:
		m.done = true
		m.result, m.err = ev.Result, ev.Err
		if m.result != nil {
			cols, rows := resultTableData(m.result.Table)
			m.results.SetColumns(cols)
			m.results.SetRows(rows)
		}
		m.layout()
	}
}

func styleLine(rec batch.Record) string {
	switch rec.Status {
	case batch.StatusSkipped:
		return warnStyle.Render(rec.Line)
	case batch.StatusFailed:
		return errorStyle.Render(rec.Line)
	}
	return rec.Line
}

func (m *Model) layout() {
	w := maxInt(20, m.width-4)
	logHeight := maxInt(3, m.height-8)
	if m.done && m.result != nil {
		logHeight = maxInt(3, m.height/3)
		m.results.SetWidth(w)
		m.results.SetHeight(maxInt(3, m.height-logHeight-10))
	}
	m.log.Width = w
	m.log.Height = logHeight
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(m.progress()))
	b.WriteString("\n")
	b.WriteString(logStyle.Render(m.log.View()))
	b.WriteString("\n")
	if !m.done {
		b.WriteString(headerStyle.Render("q: abort"))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("✗ Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.result != nil {
		b.WriteString(m.results.View())
		b.WriteString("\n")
		for _, w := range m.result.Warnings {
			b.WriteString(warnStyle.Render("⚠ " + w))
			b.WriteString("\n")
		}
		if m.result.Output != "" {
			b.WriteString(okStyle.Render("✓ Saved " + m.result.Output))
			b.WriteString("\n")
		}
	}
	b.WriteString(headerStyle.Render("q/enter: quit  ↑/↓: scroll"))
	return b.String()
}

func (m *Model) progress() string {
	state := "running"
	if m.done {
		state = "done"
	}
	return fmt.Sprintf("%s  [%d/%d]  ok %d  undefined %d  skipped %d  failed %d",
		state, m.index, m.total,
		m.counts[batch.StatusOK], m.counts[batch.StatusUndefined],
		m.counts[batch.StatusSkipped], m.counts[batch.StatusFailed])
}

// Result returns the finished run, or nil while running.
func (m *Model) Result() *batch.Result { return m.result }

// Err returns the error carried by the Done event.
func (m *Model) Err() error { return m.err }

// Done reports whether the Done event was received.
func (m *Model) Done() bool { return m.done }

func resultTableData(t batch.Table) ([]table.Column, []table.Row) {
	names := append([]string{}, t.Columns...)
	names = append(names, "Status")
	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = len(n)
	}
	rows := make([]table.Row, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row := make(table.Row, len(names))
		row[0] = rec.File
		for i, col := range t.Columns[1:] {
			if c, ok := rec.Values[col]; ok {
				row[i+1] = c.String()
			}
		}
		row[len(names)-1] = string(rec.Status)
		for i, cell := range row {
			widths[i] = maxInt(widths[i], len(cell))
		}
		rows = append(rows, row)
	}
	cols := make([]table.Column, len(names))
	for i, n := range names {
		cols[i] = table.Column{Title: n, Width: minInt(maxColWidth, maxInt(minColWidth, widths[i]))}
	}
	return cols, rows
}

func resultTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
