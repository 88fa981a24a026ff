package groundlink

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	dispatchQueueSize = 256
	linkEventWait     = time.Second
)

type registration struct {
	name  string
	funcs ObserverFuncs
}

// Dispatcher fans events out to registered observers. Publish is safe from
// any goroutine; delivery happens on the goroutine running Run, or inline
// through Deliver.
type Dispatcher struct {
	log    zerolog.Logger
	events chan Event

	mu        sync.RWMutex
	observers []registration

	dropped atomic.Uint64
}

// NewDispatcher returns a dispatcher with no observers
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		log:    log,
		events: make(chan Event, dispatchQueueSize),
	}
}

// Register adds obs, resolving its capabilities once. Observers without any
// capability are ignored.
func (d *Dispatcher) Register(obs any) {
	funcs := resolveObserver(obs)
	if funcs.empty() {
		d.log.Warn().Str("observer", fmt.Sprintf("%T", obs)).Msg("observer has no capabilities, ignored")
		return
	}

	d.mu.Lock()
	d.observers = append(d.observers, registration{name: fmt.Sprintf("%T", obs), funcs: funcs})
	d.mu.Unlock()
}

// Publish queues ev for delivery. Telemetry is dropped when the queue is
// full; link transitions wait up to a second for room.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case d.events <- ev:
		return
	default:
	}

	if _, ok := ev.(LinkChanged); ok {
		timer := time.NewTimer(linkEventWait)
		defer timer.Stop()
		select {
		case d.events <- ev:
			return
		case <-timer.C:
		}
	}

	d.dropped.Add(1)
	d.log.Warn().Str("event", ev.Kind()).Msg("dispatch queue full, event dropped")
}

// Dropped returns how many events Publish discarded
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Run delivers queued events until stop is closed, then delivers whatever
// is still queued and returns.
func (d *Dispatcher) Run(stop <-chan struct{}) {
	for {
		select {
		case ev := <-d.events:
			d.Deliver(ev)
		case <-stop:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case ev := <-d.events:
			d.Deliver(ev)
		default:
			return
		}
	}
}

// Deliver hands ev to every observer synchronously
func (d *Dispatcher) Deliver(ev Event) {
	d.mu.RLock()
	observers := d.observers
	d.mu.RUnlock()

	for _, o := range observers {
		d.deliverOne(o, ev)
	}
}

func (d *Dispatcher) deliverOne(o registration, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("observer", o.name).
				Str("event", ev.Kind()).
				Interface("panic", r).
				Msg("observer panicked")
		}
	}()

	var err error
	switch e := ev.(type) {
	case LocalPose:
		err = o.funcs.OnLocalPosition(e.X, e.Y, e.Z)
	case GlobalPose:
		err = o.funcs.OnGlobalPosition(e.Lat, e.Lon, e.Alt)
	case Battery:
		err = o.funcs.OnBattery(e.Percent, e.Voltage)
	case Speed:
		err = o.funcs.OnSpeed(e.Value)
	case LinkChanged:
		err = o.funcs.OnLinkStateChanged(e.Up)
	}

	if err != nil {
		d.log.Warn().
			Err(&LinkError{Kind: KindObserver, Op: ev.Kind(), Err: err}).
			Str("observer", o.name).
			Msg("observer failed")
	}
}
