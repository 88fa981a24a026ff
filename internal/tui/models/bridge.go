package models

import (
	"time"

	groundlink "github.com/allbin/go-groundlink"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender is satisfied by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// EventMsg carries one telemetry or link event into the tea loop
type EventMsg struct {
	At    time.Time
	Event groundlink.Event
}

// TxResultMsg reports the outcome of an outbound command
type TxResultMsg struct {
	At   time.Time
	Text string
	Err  error
}

// ConnectionStatusMsg reports the result of opening the link
type ConnectionStatusMsg struct {
	Connected bool
	Port      string
	Error     error
}

// Bridge is a groundlink observer that forwards every callback to a tea
// program. It runs on the dispatcher goroutine, so it only enqueues.
type Bridge struct {
	send Sender
	now  func() time.Time
}

func NewBridge(s Sender) *Bridge {
	return &Bridge{send: s, now: time.Now}
}

func (b *Bridge) emit(ev groundlink.Event) error {
	b.send.Send(EventMsg{At: b.now(), Event: ev})
	return nil
}

func (b *Bridge) OnLocalPosition(x, y, z float64) error {
	return b.emit(groundlink.LocalPose{X: x, Y: y, Z: z})
}

func (b *Bridge) OnGlobalPosition(lat, lon, alt float64) error {
	return b.emit(groundlink.GlobalPose{Lat: lat, Lon: lon, Alt: alt})
}

func (b *Bridge) OnBattery(percent, voltage float64) error {
	return b.emit(groundlink.Battery{Percent: percent, Voltage: voltage})
}

func (b *Bridge) OnSpeed(value float64) error {
	return b.emit(groundlink.Speed{Value: value})
}

func (b *Bridge) OnLinkStateChanged(up bool) error {
	return b.emit(groundlink.LinkChanged{Up: up})
}
