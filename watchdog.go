package groundlink

import (
	"sync"
	"sync/atomic"
	"time"
)

// LinkState is the debounced view of link health
type LinkState struct {
	IsUp            bool
	LastHeartbeatAt time.Time // zero until the first heartbeat
	MissedCount     uint
}

// Watchdog derives link up/down from heartbeat timestamps.
//
// Observe is called by the receive loop only; Tick, Run and ForceDown may run
// on other goroutines. notify is invoked outside the lock once per transition.
type Watchdog struct {
	cfg    WatchdogConfig
	notify func(up bool)

	lastHB atomic.Int64 // unix nanos, 0 = never

	mu     sync.Mutex
	up     bool
	missed uint
	halted bool
}

// NewWatchdog returns a watchdog in the down state. Zero fields in cfg take
// their defaults. notify may be nil.
func NewWatchdog(cfg WatchdogConfig, notify func(up bool)) *Watchdog {
	def := DefaultWatchdogConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Grace == 0 {
		cfg.Grace = def.Grace
	}
	if notify == nil {
		notify = func(bool) {}
	}
	return &Watchdog{cfg: cfg, notify: notify}
}

// Config returns the effective configuration
func (w *Watchdog) Config() WatchdogConfig {
	return w.cfg
}

// Observe records a heartbeat seen at t
func (w *Watchdog) Observe(t time.Time) {
	w.lastHB.Store(t.UnixNano())
}

// Tick evaluates the link at now. changed reports a transition, up the
// resulting state.
func (w *Watchdog) Tick(now time.Time) (changed, up bool) {
	w.mu.Lock()
	changed, up = w.tickLocked(now)
	w.mu.Unlock()

	if changed {
		w.notify(up)
	}
	return changed, up
}

func (w *Watchdog) tickLocked(now time.Time) (bool, bool) {
	if w.halted {
		return false, w.up
	}

	last := w.lastHB.Load()
	if last == 0 || now.Sub(time.Unix(0, last)) > w.cfg.Timeout {
		w.missed++
		if w.up && w.missed >= w.cfg.Grace {
			w.up = false
			return true, false
		}
		return false, w.up
	}

	w.missed = 0
	if !w.up {
		w.up = true
		return true, true
	}
	return false, true
}

// Run ticks every interval until stop is closed
func (w *Watchdog) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			w.Tick(now)
		}
	}
}

// ForceDown marks the link down, clears the heartbeat history and stops
// further transitions until Reset. It notifies if the link was up and
// reports whether it was.
func (w *Watchdog) ForceDown() bool {
	w.mu.Lock()
	wasUp := w.up
	w.up = false
	w.missed = 0
	w.halted = true
	w.lastHB.Store(0)
	w.mu.Unlock()

	if wasUp {
		w.notify(false)
	}
	return wasUp
}

// Reset clears all state without notifying and re-arms the watchdog
func (w *Watchdog) Reset() {
	w.mu.Lock()
	w.up = false
	w.missed = 0
	w.halted = false
	w.lastHB.Store(0)
	w.mu.Unlock()
}

// State returns a snapshot of the link state
func (w *Watchdog) State() LinkState {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := LinkState{IsUp: w.up, MissedCount: w.missed}
	if last := w.lastHB.Load(); last != 0 {
		s.LastHeartbeatAt = time.Unix(0, last)
	}
	return s
}
