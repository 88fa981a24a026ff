package components

import (
	"fmt"
	"time"

	"github.com/allbin/go-groundlink/internal/tui/colors"
	"github.com/allbin/go-groundlink/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type ConnectionInfo struct {
	BaudRate int
	Driver   string
}

type StatusBar struct {
	portPath       string
	link           styles.LinkStatus
	err            error
	width          int
	lastHeartbeat  time.Time
	waypoints      int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{portPath: portPath, link: styles.LinkClosed}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetPort(path string) {
	sb.portPath = path
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) SetLink(status styles.LinkStatus, err error) {
	sb.link = status
	sb.err = err
}

func (sb *StatusBar) SetHeartbeat(at time.Time) {
	sb.lastHeartbeat = at
}

func (sb *StatusBar) SetWaypointCount(n int) {
	sb.waypoints = n
}

// heartbeatAge renders the time since the last heartbeat, or "--"
func heartbeatAge(last, now time.Time) string {
	if last.IsZero() {
		return "hb --"
	}
	age := now.Sub(last)
	if age < 0 {
		age = 0
	}
	return fmt.Sprintf("hb %.1fs", age.Seconds())
}

// Render draws the bar: mode, port, link indicator, link details, clock
func (sb *StatusBar) Render(inputMode string, now time.Time) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBg := colors.Blue
	if inputMode == "INSERT" {
		modeBg = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBg).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	status := sb.link
	if sb.err != nil {
		status = styles.LinkError
	}
	indicator := styles.GetStatusStyle(status).Render(status.Symbol() + " " + status.String())

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	details := "⚡ serial"
	if sb.connectionInfo != nil {
		details = fmt.Sprintf("⚡ %d baud %s", sb.connectionInfo.BaudRate, sb.connectionInfo.Driver)
	}
	details = fmt.Sprintf("%s  %s  wp %d", details, heartbeatAge(sb.lastHeartbeat, now), sb.waypoints)
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(details)

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(now.Format("15:04:05"))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, indicator, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := max(terminalWidth-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 1)
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
