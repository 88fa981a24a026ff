package keys

import "github.com/charmbracelet/bubbles/key"

// DashboardKeys drive the vehicle: commands, mission editing and the log
type DashboardKeys struct {
	CommonKeys
	Start          key.Binding
	Stop           key.Binding
	Land           key.Binding
	Offboard       key.Binding
	SendMission    key.Binding
	DeleteWaypoint key.Binding
	Enter          key.Binding
	Up             key.Binding
	Down           key.Binding
	Clear          key.Binding
}

func NewDashboardKeys() DashboardKeys {
	return DashboardKeys{
		CommonKeys: NewCommonKeys(),
		Start: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "send ON"),
		),
		Stop: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "send OFF"),
		),
		Land: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "land"),
		),
		Offboard: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "offboard"),
		),
		SendMission: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send waypoints"),
		),
		DeleteWaypoint: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d/x", "delete waypoint"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add waypoint"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
	}
}

func (k DashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Start, k.Stop, k.Land, k.SendMission, k.InsertMode, k.Quit}
}

func (k DashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Land, k.Offboard},
		{k.InsertMode, k.Enter, k.Escape, k.SendMission, k.DeleteWaypoint},
		{k.Up, k.Down, k.Clear},
		{k.Help, k.Quit},
	}
}
