package styles

import (
	"github.com/allbin/go-groundlink/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface1).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(colors.Mauve).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)
)

// LinkStatus is what the dashboard shows for the radio link
type LinkStatus int

const (
	LinkClosed LinkStatus = iota
	LinkConnecting
	LinkDown // port open, no heartbeat
	LinkUp
	LinkError
)

func (s LinkStatus) String() string {
	switch s {
	case LinkConnecting:
		return "connecting"
	case LinkDown:
		return "no heartbeat"
	case LinkUp:
		return "link up"
	case LinkError:
		return "error"
	default:
		return "closed"
	}
}

// Symbol is the single character indicator for s
func (s LinkStatus) Symbol() string {
	switch s {
	case LinkUp:
		return "●"
	case LinkError:
		return "✗"
	default:
		return "○"
	}
}

func GetStatusStyle(status LinkStatus) lipgloss.Style {
	switch status {
	case LinkUp:
		return lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	case LinkConnecting, LinkDown:
		return lipgloss.NewStyle().Foreground(colors.Yellow).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colors.Red).Bold(true)
	}
}
