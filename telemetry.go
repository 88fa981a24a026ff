package groundlink

import (
	"fmt"
	"math"
)

// Event is one decoded piece of vehicle state. A single inbound line may
// produce several events.
type Event interface {
	Kind() string
	isEvent()
}

// Event kinds
const (
	KindHeartbeat   = "heartbeat"
	KindLocalPose   = "local_pose"
	KindGlobalPose  = "global_pose"
	KindBattery     = "battery"
	KindSpeed       = "speed"
	KindLinkChanged = "link"
)

// Heartbeat marks vehicle liveness ({"hb":1})
type Heartbeat struct{}

// LocalPose is the vehicle position in the local frame, meters
type LocalPose struct {
	X, Y, Z float64
}

// GlobalPose is the GPS position
type GlobalPose struct {
	Lat, Lon, Alt float64
}

// Battery state. Percent is -1 and Voltage is NaN when the vehicle did not
// report them.
type Battery struct {
	Percent float64
	Voltage float64
}

// Speed is ground speed as reported by the vehicle
type Speed struct {
	Value float64
}

// LinkChanged is published by the watchdog on each link transition
type LinkChanged struct {
	Up bool
}

func (Heartbeat) Kind() string   { return KindHeartbeat }
func (LocalPose) Kind() string   { return KindLocalPose }
func (GlobalPose) Kind() string  { return KindGlobalPose }
func (Battery) Kind() string     { return KindBattery }
func (Speed) Kind() string       { return KindSpeed }
func (LinkChanged) Kind() string { return KindLinkChanged }

func (Heartbeat) isEvent()   {}
func (LocalPose) isEvent()   {}
func (GlobalPose) isEvent()  {}
func (Battery) isEvent()     {}
func (Speed) isEvent()       {}
func (LinkChanged) isEvent() {}

// HasPercent reports whether the percentage is known
func (b Battery) HasPercent() bool { return b.Percent >= 0 }

// HasVoltage reports whether the voltage is known
func (b Battery) HasVoltage() bool { return !math.IsNaN(b.Voltage) }

func (p LocalPose) String() string {
	return fmt.Sprintf("x=%.2f y=%.2f z=%.2f", p.X, p.Y, p.Z)
}

func (p GlobalPose) String() string {
	return fmt.Sprintf("lat=%.6f lon=%.6f alt=%.1f", p.Lat, p.Lon, p.Alt)
}

func (b Battery) String() string {
	switch {
	case b.HasPercent() && b.HasVoltage():
		return fmt.Sprintf("%.0f%% %.2fV", b.Percent, b.Voltage)
	case b.HasPercent():
		return fmt.Sprintf("%.0f%%", b.Percent)
	case b.HasVoltage():
		return fmt.Sprintf("%.2fV", b.Voltage)
	default:
		return "-"
	}
}

func (s Speed) String() string {
	return fmt.Sprintf("%.2f", s.Value)
}

func (l LinkChanged) String() string {
	if l.Up {
		return "up"
	}
	return "down"
}
