package groundlink

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fullObserver implements every capability and records calls
type fullObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *fullObserver) add(s string) {
	o.mu.Lock()
	o.calls = append(o.calls, s)
	o.mu.Unlock()
}

func (o *fullObserver) Calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

func (o *fullObserver) OnLocalPosition(x, y, z float64) error        { o.add("local"); return nil }
func (o *fullObserver) OnGlobalPosition(lat, lon, alt float64) error { o.add("global"); return nil }
func (o *fullObserver) OnBattery(percent, voltage float64) error     { o.add("battery"); return nil }
func (o *fullObserver) OnSpeed(value float64) error                  { o.add("speed"); return nil }
func (o *fullObserver) OnLinkStateChanged(up bool) error {
	if up {
		o.add("up")
	} else {
		o.add("down")
	}
	return nil
}

// speedOnly implements a single capability
type speedOnly struct {
	got []float64
}

func (s *speedOnly) OnSpeed(v float64) error {
	s.got = append(s.got, v)
	return nil
}

type panicky struct{}

func (panicky) OnBattery(float64, float64) error { panic("display gone") }

type failing struct{}

func (failing) OnSpeed(float64) error { return errors.New("widget closed") }

func TestResolveObserver(t *testing.T) {
	f := resolveObserver(&speedOnly{})
	if f.Speed == nil {
		t.Error("Speed capability not resolved")
	}
	if f.LocalPosition != nil || f.GlobalPosition != nil || f.Battery != nil || f.LinkState != nil {
		t.Error("unexpected capabilities resolved")
	}

	if !resolveObserver(struct{}{}).empty() {
		t.Error("plain struct should have no capabilities")
	}

	funcs := ObserverFuncs{LinkState: func(bool) error { return nil }}
	if resolveObserver(funcs).LinkState == nil {
		t.Error("ObserverFuncs not used as-is")
	}
	if resolveObserver(&funcs).LinkState == nil {
		t.Error("*ObserverFuncs not used as-is")
	}
}

func TestDispatcherDeliver(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	full := &fullObserver{}
	speed := &speedOnly{}
	d.Register(full)
	d.Register(speed)
	d.Register(struct{}{}) // ignored

	for _, ev := range []Event{
		Heartbeat{},
		LocalPose{1, 2, 3},
		GlobalPose{4, 5, 6},
		Battery{50, 12},
		Speed{7},
		LinkChanged{Up: true},
		LinkChanged{Up: false},
	} {
		d.Deliver(ev)
	}

	want := []string{"local", "global", "battery", "speed", "up", "down"}
	got := full.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}

	if len(speed.got) != 1 || speed.got[0] != 7 {
		t.Errorf("speed observer got %v, want [7]", speed.got)
	}
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	d.Register(panicky{})
	d.Register(failing{})
	full := &fullObserver{}
	d.Register(full)

	d.Deliver(Battery{Percent: 10, Voltage: 11})
	d.Deliver(Speed{Value: 1})
	d.Deliver(Battery{Percent: 20, Voltage: 11})

	want := []string{"battery", "speed", "battery"}
	got := full.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestDispatcherRun(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	full := &fullObserver{}
	d.Register(full)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		d.Run(stop)
		close(done)
	}()

	d.Publish(Speed{1})
	d.Publish(LinkChanged{Up: true})

	deadline := time.Now().Add(time.Second)
	for len(full.Calls()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	got := full.Calls()
	if len(got) != 2 || got[0] != "speed" || got[1] != "up" {
		t.Errorf("calls = %v, want [speed up]", got)
	}
}

func TestDispatcherRunDrainsOnStop(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	full := &fullObserver{}
	d.Register(full)

	// queued before Run starts, stop already closed
	d.Publish(LinkChanged{Up: false})
	stop := make(chan struct{})
	close(stop)
	d.Run(stop)

	if got := full.Calls(); len(got) != 1 || got[0] != "down" {
		t.Errorf("calls = %v, want [down]", got)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())

	for i := 0; i < dispatchQueueSize+5; i++ {
		d.Publish(Speed{Value: float64(i)})
	}
	if got := d.Dropped(); got != 5 {
		t.Errorf("Dropped() = %d, want 5", got)
	}
}
