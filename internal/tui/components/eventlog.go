package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultLogLimit bounds the number of lines kept in the event log
const DefaultLogLimit = 500

// EventLog is a scrolling viewport of formatted log entries
type EventLog struct {
	viewport  viewport.Model
	formatter *EventFormatter
	lines     []string
	limit     int
}

func NewEventLog(width, height int) *EventLog {
	return &EventLog{
		viewport:  viewport.New(width, height),
		formatter: NewEventFormatter(),
		limit:     DefaultLogLimit,
	}
}

func (l *EventLog) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

func (l *EventLog) Add(e LogEntry) {
	l.lines = append(l.lines, l.formatter.Format(e))
	if over := len(l.lines) - l.limit; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

func (l *EventLog) Len() int {
	return len(l.lines)
}

func (l *EventLog) Clear() {
	l.lines = nil
	l.viewport.SetContent("")
}

func (l *EventLog) Update(msg tea.Msg) tea.Cmd {
	// keys belong to the dashboard
	if _, ok := msg.(tea.WindowSizeMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

func (l *EventLog) View() string {
	return l.viewport.View()
}
