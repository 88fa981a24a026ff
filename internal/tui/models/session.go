package models

import (
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// Telemetry is the latest known vehicle state as shown on the dashboard
type Telemetry struct {
	Local   *groundlink.LocalPose
	Global  *groundlink.GlobalPose
	Battery *groundlink.Battery
	Speed   *groundlink.Speed
	LinkUp  bool
	Updated time.Time
}

// Apply folds ev into the snapshot
func (t *Telemetry) Apply(ev groundlink.Event, at time.Time) {
	switch e := ev.(type) {
	case groundlink.LocalPose:
		t.Local = &e
	case groundlink.GlobalPose:
		t.Global = &e
	case groundlink.Battery:
		t.Battery = &e
	case groundlink.Speed:
		t.Speed = &e
	case groundlink.LinkChanged:
		t.LinkUp = e.Up
	default:
		return
	}
	t.Updated = at
}

func orDash[T interface{ String() string }](v *T) string {
	if v == nil {
		return "-"
	}
	return (*v).String()
}

func (t Telemetry) Rows() []components.TelemetryRow {
	link := "down"
	if t.LinkUp {
		link = "up"
	}
	return []components.TelemetryRow{
		{Label: "Link", Value: link},
		{Label: "Local", Value: orDash(t.Local)},
		{Label: "GPS", Value: orDash(t.Global)},
		{Label: "Battery", Value: orDash(t.Battery)},
		{Label: "Speed", Value: orDash(t.Speed)},
	}
}

// BatteryPercent is the last reported charge, or -1
func (t Telemetry) BatteryPercent() float64 {
	if t.Battery == nil {
		return -1
	}
	return t.Battery.Percent
}
