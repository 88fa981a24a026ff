/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/settings"
	"github.com/allbin/go-groundlink/internal/tui/colors"
	"github.com/allbin/go-groundlink/internal/tui/components"
	"github.com/allbin/go-groundlink/internal/tui/keys"
	"github.com/allbin/go-groundlink/internal/tui/models"
	"github.com/allbin/go-groundlink/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [port]",
	Short: "Open the ground station dashboard",
	Long: `Connect to the vehicle and open an interactive dashboard.

The dashboard shows live telemetry, the link state derived from heartbeats,
the waypoint mission and a log of everything sent and received. Keys:
- o / f:   send ON / OFF
- l / b:   land / offboard
- a:       add a waypoint ("x y [z]", enter to add, esc to leave)
- d:       delete the highlighted waypoint
- s:       send the waypoint list
- ?:       all key bindings

Example usage:
  groundlink connect /dev/ttyUSB0
  groundlink connect --baud 57600 --record
  groundlink connect --mission survey.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noStart, _ := cmd.Flags().GetBool("no-start")
		logFile, _ := cmd.Flags().GetString("log-file")
		missionFile, _ := cmd.Flags().GetString("mission")

		s, _ := loadSettings(args)

		// the alternate screen owns the terminal, so logs go to a file or nowhere
		var out io.Writer = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		var raw []map[string]any
		if missionFile != "" {
			raw = loadMission(missionFile)
		}

		if err := runDashboard(s, s.NewLogger(out), !noStart, raw); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().Bool("no-start", false, "Connect without sending ON")
	connectCmd.Flags().String("log-file", "", "Write logs to this file while the dashboard runs")
	connectCmd.Flags().StringP("mission", "m", "", "Preload waypoints from a mission file")
}

const (
	refreshInterval = 250 * time.Millisecond
	panelHeight     = 7 // table rows incl. header
	inputHeight     = 3
	statusBarHeight = 1
)

type refreshMsg time.Time

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// dashboardModel represents the Bubble Tea model for the connect command
type dashboardModel struct {
	ctl *groundlink.Controller

	telemetry models.Telemetry
	inputMode models.InputMode
	ready     bool
	width     int
	height    int

	eventLog       *components.EventLog
	telemetryTable *components.TelemetryTable
	waypoints      *components.WaypointTable
	statusBar      *components.StatusBar
	input          *components.WaypointInput
	help           help.Model
	keys           keys.DashboardKeys
}

func newDashboardModel(ctl *groundlink.Controller) *dashboardModel {
	cfg := ctl.Link().Config()
	port := cfg.Port
	if cfg.AutoDetect() {
		port = groundlink.AutoPort
	}

	m := &dashboardModel{
		ctl:            ctl,
		eventLog:       components.NewEventLog(0, 0), // sized by WindowSizeMsg
		telemetryTable: components.NewTelemetryTable(40, panelHeight),
		waypoints:      components.NewWaypointTable(panelHeight - 2),
		statusBar:      components.NewStatusBar(port),
		input:          components.NewWaypointInput(),
		help:           help.New(),
		keys:           keys.NewDashboardKeys(),
	}
	m.statusBar.SetLink(styles.LinkConnecting, nil)
	m.statusBar.SetConnectionInfo(&components.ConnectionInfo{BaudRate: cfg.BaudRate, Driver: cfg.Driver})
	m.telemetryTable.SetRows(m.telemetry.Rows())
	m.syncWaypoints()
	return m
}

func runDashboard(s settings.Settings, log zerolog.Logger, start bool, mission []map[string]any) error {
	ctl := newController(s, log)
	if len(mission) > 0 {
		ctl.Waypoints().ReplaceAll(mission)
	}

	m := newDashboardModel(ctl)
	p := tea.NewProgram(m, tea.WithAltScreen())
	ctl.Register(models.NewBridge(p))

	// the connect goroutine hands over the flight log closer once it is known
	finished := make(chan func(), 1)
	go func() {
		if err := ctl.Connect(); err != nil {
			finished <- func() {}
			p.Send(models.ConnectionStatusMsg{Error: err})
			return
		}
		finished <- startRecording(s, ctl, log)

		if start {
			_ = ctl.Transmitter().SendStart()
		}
		if err := ctl.StartReceiving(); err != nil {
			p.Send(models.ConnectionStatusMsg{Error: err})
			return
		}
		p.Send(models.ConnectionStatusMsg{Connected: true, Port: ctl.Link().PortName()})
	}()

	_, err := p.Run()

	closeLog := <-finished
	ctl.Stop()
	closeLog()
	return err
}

func (m *dashboardModel) Init() tea.Cmd {
	return refresh()
}

func (m *dashboardModel) syncWaypoints() {
	m.waypoints.SetWaypoints(m.ctl.Waypoints().List())
	m.statusBar.SetWaypointCount(m.waypoints.Len())
}

func (m *dashboardModel) info(text string) {
	m.eventLog.Add(components.LogEntry{Timestamp: time.Now(), Direction: components.DirInfo, Text: text})
}

// transmit logs a pending TX entry and runs send off the UI goroutine
func (m *dashboardModel) transmit(label string, send func() error) tea.Cmd {
	m.eventLog.Add(components.LogEntry{
		Timestamp: time.Now(),
		Direction: components.DirTX,
		Text:      label,
		Status:    components.StatusPending,
	})
	return func() tea.Msg {
		err := send()
		return models.TxResultMsg{At: time.Now(), Text: label, Err: err}
	}
}

func (m *dashboardModel) resize(width, height int) {
	m.width, m.height = width, height
	panelWidth := max(width/2-2, 30)

	logHeight := height - (panelHeight + 2) - inputHeight - statusBarHeight - 1
	if m.help.ShowAll {
		logHeight -= 6
	}
	m.eventLog.SetSize(width, max(logHeight, 3))
	m.telemetryTable.SetSize(panelWidth-4, panelHeight)
	m.input.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.help.Width = width
	m.ready = true
}

func (m *dashboardModel) addWaypoint() {
	text := m.input.Value()
	raw, err := components.ParseWaypointInput(text)
	if err == nil {
		var wp groundlink.Waypoint
		if wp, err = groundlink.ParseWaypoint(raw); err == nil {
			m.ctl.Waypoints().Set(append(m.ctl.Waypoints().List(), wp))
			m.syncWaypoints()
			m.info(fmt.Sprintf("waypoint %d added: x=%.2f y=%.2f z=%.2f", m.waypoints.Len(), wp.X, wp.Y, wp.Z))
			m.input.AddToHistory(text)
			m.input.SetValue("")
			return
		}
	}
	m.eventLog.Add(components.LogEntry{
		Timestamp: time.Now(),
		Direction: components.DirInfo,
		Text:      styles.ErrorStyle.Render(fmt.Sprintf("invalid waypoint %q: %v", text, err)),
	})
}

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		cmds = append(cmds, m.eventLog.Update(msg))

	case refreshMsg:
		m.statusBar.SetHeartbeat(m.ctl.LinkState().LastHeartbeatAt)
		cmds = append(cmds, refresh())

	case models.ConnectionStatusMsg:
		if msg.Error != nil {
			m.statusBar.SetLink(styles.LinkError, msg.Error)
			m.eventLog.Add(components.LogEntry{
				Timestamp: time.Now(),
				Direction: components.DirInfo,
				Text:      styles.ErrorStyle.Render(msg.Error.Error()),
			})
			break
		}
		m.statusBar.SetPort(msg.Port)
		m.statusBar.SetLink(styles.LinkDown, nil)
		m.info("connected to " + msg.Port + ", waiting for heartbeat")

	case models.EventMsg:
		m.telemetry.Apply(msg.Event, msg.At)
		m.telemetryTable.SetRows(m.telemetry.Rows())
		m.eventLog.Add(components.EntryFromEvent(msg.At, msg.Event))
		if lc, ok := msg.Event.(groundlink.LinkChanged); ok {
			status := styles.LinkDown
			if lc.Up {
				status = styles.LinkUp
			}
			m.statusBar.SetLink(status, nil)
		}

	case models.TxResultMsg:
		entry := components.LogEntry{Timestamp: msg.At, Direction: components.DirTX, Text: msg.Text, Status: components.StatusWritten}
		if msg.Err != nil {
			entry.Status = components.StatusError
			entry.Text = fmt.Sprintf("%s: %v", msg.Text, msg.Err)
		}
		m.eventLog.Add(entry)

	case tea.KeyMsg:
		if m.inputMode == models.InputModeInsert {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.inputMode = models.InputModeNormal
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				m.addWaypoint()
				return m, tea.Batch(cmds...)
			case msg.Type == tea.KeyUp:
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case msg.Type == tea.KeyDown:
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			}
			cmds = append(cmds, m.input.Update(msg))
			return m, tea.Batch(cmds...)
		}

		tx := m.ctl.Transmitter()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize(m.width, m.height)

		case key.Matches(msg, m.keys.InsertMode):
			m.inputMode = models.InputModeInsert
			m.input.Focus()

		case key.Matches(msg, m.keys.Start):
			cmds = append(cmds, m.transmit(groundlink.CmdOn, tx.SendStart))

		case key.Matches(msg, m.keys.Stop):
			cmds = append(cmds, m.transmit(groundlink.CmdOff, tx.SendStop))

		case key.Matches(msg, m.keys.Land):
			cmds = append(cmds, m.transmit(groundlink.CmdLand, tx.SendLand))

		case key.Matches(msg, m.keys.Offboard):
			cmds = append(cmds, m.transmit(groundlink.CmdOffboard, tx.SendOffboard))

		case key.Matches(msg, m.keys.SendMission):
			label := fmt.Sprintf("waypoints (%d)", m.ctl.Waypoints().Len())
			cmds = append(cmds, m.transmit(label, tx.SendWaypoints))

		case key.Matches(msg, m.keys.DeleteWaypoint):
			idx := m.waypoints.Selected()
			if err := m.ctl.Waypoints().RemoveAt(idx + 1); err != nil {
				m.info(err.Error())
				break
			}
			m.syncWaypoints()
			m.info(fmt.Sprintf("waypoint %d removed", idx+1))

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			cmds = append(cmds, m.waypoints.Update(msg))

		case key.Matches(msg, m.keys.Clear):
			m.eventLog.Clear()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *dashboardModel) telemetryPanel(width int) string {
	title := styles.PanelTitleStyle.Render("Telemetry")
	if pct := m.telemetry.BatteryPercent(); pct >= 0 {
		battery := lipgloss.NewStyle().
			Foreground(colors.Battery(pct)).
			Bold(true).
			Render(fmt.Sprintf("  ▮ %.0f%%", pct))
		title = lipgloss.JoinHorizontal(lipgloss.Left, title, battery)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, title, m.telemetryTable.View())
	return styles.PanelStyle.Width(width).Render(body)
}

func (m *dashboardModel) waypointPanel(width int) string {
	title := styles.PanelTitleStyle.Render(fmt.Sprintf("Waypoints (%d)", m.waypoints.Len()))
	body := m.waypoints.View()
	if m.waypoints.Len() == 0 {
		body = styles.LabelStyle.Render("no waypoints, press 'a' to add")
	}
	return styles.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

func (m *dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	panelWidth := max(m.width/2-2, 30)
	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.telemetryPanel(panelWidth),
		m.waypointPanel(panelWidth),
	)

	sections := []string{
		panels,
		styles.ContentBorderStyle.Render(m.eventLog.View()),
		m.input.View(m.inputMode == models.InputModeInsert),
	}

	if m.help.ShowAll {
		helpView := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 2).
			Render(m.help.View(m.keys))
		sections = append(sections, helpView)
	}

	sections = append(sections, m.statusBar.Render(m.inputMode.String(), time.Now()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
