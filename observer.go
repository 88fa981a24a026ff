package groundlink

// Observer capabilities. An observer implements any subset; missing ones are
// no-ops. Returned errors are logged by the dispatcher and never stop delivery.

// LocalPositionObserver receives x/y/z in the vehicle's local frame
type LocalPositionObserver interface {
	OnLocalPosition(x, y, z float64) error
}

// GlobalPositionObserver receives GPS latitude, longitude and altitude
type GlobalPositionObserver interface {
	OnGlobalPosition(lat, lon, alt float64) error
}

// BatteryObserver receives the charge percentage (-1 unknown) and voltage (NaN unknown)
type BatteryObserver interface {
	OnBattery(percent, voltage float64) error
}

// SpeedObserver receives ground speed
type SpeedObserver interface {
	OnSpeed(value float64) error
}

// LinkStateObserver is told when the watchdog brings the link up or down
type LinkStateObserver interface {
	OnLinkStateChanged(up bool) error
}

// ObserverFuncs adapts plain functions to every capability. Nil fields are
// no-ops.
type ObserverFuncs struct {
	LocalPosition  func(x, y, z float64) error
	GlobalPosition func(lat, lon, alt float64) error
	Battery        func(percent, voltage float64) error
	Speed          func(value float64) error
	LinkState      func(up bool) error
}

// OnLocalPosition calls f.LocalPosition
func (f ObserverFuncs) OnLocalPosition(x, y, z float64) error {
	if f.LocalPosition == nil {
		return nil
	}
	return f.LocalPosition(x, y, z)
}

// OnGlobalPosition calls f.GlobalPosition
func (f ObserverFuncs) OnGlobalPosition(lat, lon, alt float64) error {
	if f.GlobalPosition == nil {
		return nil
	}
	return f.GlobalPosition(lat, lon, alt)
}

// OnBattery calls f.Battery
func (f ObserverFuncs) OnBattery(percent, voltage float64) error {
	if f.Battery == nil {
		return nil
	}
	return f.Battery(percent, voltage)
}

// OnSpeed calls f.Speed
func (f ObserverFuncs) OnSpeed(value float64) error {
	if f.Speed == nil {
		return nil
	}
	return f.Speed(value)
}

// OnLinkStateChanged calls f.LinkState
func (f ObserverFuncs) OnLinkStateChanged(up bool) error {
	if f.LinkState == nil {
		return nil
	}
	return f.LinkState(up)
}

// resolveObserver picks the capabilities obs implements, once
func resolveObserver(obs any) ObserverFuncs {
	if f, ok := obs.(ObserverFuncs); ok {
		return f
	}
	if f, ok := obs.(*ObserverFuncs); ok && f != nil {
		return *f
	}

	var f ObserverFuncs
	if o, ok := obs.(LocalPositionObserver); ok {
		f.LocalPosition = o.OnLocalPosition
	}
	if o, ok := obs.(GlobalPositionObserver); ok {
		f.GlobalPosition = o.OnGlobalPosition
	}
	if o, ok := obs.(BatteryObserver); ok {
		f.Battery = o.OnBattery
	}
	if o, ok := obs.(SpeedObserver); ok {
		f.Speed = o.OnSpeed
	}
	if o, ok := obs.(LinkStateObserver); ok {
		f.LinkState = o.OnLinkStateChanged
	}
	return f
}

// empty reports whether no capability is set
func (f ObserverFuncs) empty() bool {
	return f.LocalPosition == nil && f.GlobalPosition == nil && f.Battery == nil &&
		f.Speed == nil && f.LinkState == nil
}
