package components

import (
	"fmt"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// Direction of a log entry relative to the ground station
type Direction int

const (
	DirRX Direction = iota
	DirTX
	DirInfo
)

// TX entry statuses
const (
	StatusPending = "PENDING"
	StatusWritten = "WRITTEN"
	StatusError   = "ERROR"
)

// LogEntry is one line of the event log
type LogEntry struct {
	Timestamp time.Time
	Direction Direction
	Text      string
	Status    string // TX only
}

// EntryFromEvent turns decoded telemetry into a log entry
func EntryFromEvent(at time.Time, ev groundlink.Event) LogEntry {
	return LogEntry{Timestamp: at, Direction: DirRX, Text: ev.String()}
}

type EventFormatter struct {
	ShowTimestamps bool
}

func NewEventFormatter() *EventFormatter {
	return &EventFormatter{ShowTimestamps: true}
}

func (f *EventFormatter) indicator(e LogEntry) string {
	switch e.Direction {
	case DirTX:
		var txColor lipgloss.Color
		var statusText string

		switch e.Status {
		case StatusPending:
			txColor = colors.Yellow
			statusText = "TX ○"
		case StatusWritten:
			txColor = colors.Green
			statusText = "TX ✓"
		case StatusError:
			txColor = colors.Red
			statusText = "TX ✗"
		default:
			txColor = colors.Peach
			statusText = "TX"
		}
		return lipgloss.NewStyle().Foreground(txColor).Bold(true).Render("↗ " + statusText)
	case DirInfo:
		return lipgloss.NewStyle().Foreground(colors.Mauve).Bold(true).Render("• --")
	default:
		return lipgloss.NewStyle().Foreground(colors.Sky).Bold(true).Render("↙ RX")
	}
}

func (f *EventFormatter) Format(e LogEntry) string {
	line := fmt.Sprintf("%s %s", f.indicator(e), e.Text)
	if !f.ShowTimestamps {
		return line
	}

	ts := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", e.Timestamp.Format("15:04:05.000")))
	return ts + " " + line
}
