package groundlink

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// recordingWriter is a LineWriter that keeps every line
type recordingWriter struct {
	mu     sync.Mutex
	open   bool
	lines  []string
	failOn string
}

func (w *recordingWriter) WriteLine(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return ErrLinkClosed
	}
	if w.failOn != "" && text == w.failOn {
		return errors.New("radio busy")
	}
	w.lines = append(w.lines, text)
	return nil
}

func (w *recordingWriter) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

func (w *recordingWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}

func newTestTransmitter(open bool) (*Transmitter, *WaypointStore, *recordingWriter) {
	w := &recordingWriter{open: open}
	store := NewWaypointStore(zerolog.Nop())
	return NewTransmitter(w, store, zerolog.Nop()), store, w
}

func TestTransmitterCommands(t *testing.T) {
	tx, _, w := newTestTransmitter(true)

	steps := []struct {
		name string
		send func() error
		want string
	}{
		{"start", tx.SendStart, "ON"},
		{"stop", tx.SendStop, "OFF"},
		{"land", tx.SendLand, `{"cmd":"land"}`},
		{"offboard", tx.SendOffboard, `{"cmd":"offboard"}`},
	}

	for _, step := range steps {
		if err := step.send(); err != nil {
			t.Errorf("%s failed: %v", step.name, err)
		}
	}

	lines := w.Lines()
	if len(lines) != len(steps) {
		t.Fatalf("wrote %d lines, want %d: %v", len(lines), len(steps), lines)
	}
	for i, step := range steps {
		if lines[i] != step.want {
			t.Errorf("%s wrote %q, want %q", step.name, lines[i], step.want)
		}
	}
}

func TestSendWaypoints(t *testing.T) {
	tx, store, w := newTestTransmitter(true)
	store.Set([]Waypoint{{1, 2, 3.5}, {-1.25, 0, 10}})

	if err := tx.SendWaypoints(); err != nil {
		t.Fatalf("SendWaypoints failed: %v", err)
	}

	want := `{"waypoints":[{"x":1,"y":2,"z":3.5},{"x":-1.25,"y":0,"z":10}]}`
	lines := w.Lines()
	if len(lines) != 1 || lines[0] != want {
		t.Errorf("wrote %v, want [%s]", lines, want)
	}
}

func TestSendWaypointsEmptyStore(t *testing.T) {
	tx, _, w := newTestTransmitter(true)

	if err := tx.SendWaypoints(); !errors.Is(err, ErrNoWaypoints) {
		t.Errorf("SendWaypoints() = %v, want ErrNoWaypoints", err)
	}
	if lines := w.Lines(); len(lines) != 0 {
		t.Errorf("empty store wrote %v", lines)
	}
}

func TestSendWaypointsClosedLink(t *testing.T) {
	tx, store, w := newTestTransmitter(false)
	store.Set([]Waypoint{{1, 1, 1}})

	if err := tx.SendWaypoints(); !errors.Is(err, ErrLinkClosed) {
		t.Errorf("SendWaypoints() = %v, want ErrLinkClosed", err)
	}
	if lines := w.Lines(); len(lines) != 0 {
		t.Errorf("closed link wrote %v", lines)
	}
}

func TestSendCommandClosedLink(t *testing.T) {
	tx, _, _ := newTestTransmitter(false)

	if err := tx.SendStart(); !errors.Is(err, ErrLinkClosed) {
		t.Errorf("SendStart() = %v, want ErrLinkClosed", err)
	}
}

func TestSendWriteError(t *testing.T) {
	tx, _, w := newTestTransmitter(true)
	w.failOn = "OFF"

	if err := tx.SendStop(); err == nil {
		t.Error("expected write error to be returned")
	}
}

func TestUploadMission(t *testing.T) {
	tx, store, w := newTestTransmitter(true)

	n, err := tx.UploadMission([]map[string]any{
		{"x": 1.0, "y": 1.0},
		{"y": 2.0},
	})
	if err != nil {
		t.Fatalf("UploadMission failed: %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("UploadMission() = %d, Len() = %d, want 1, 1", n, store.Len())
	}

	want := `{"waypoints":[{"x":1,"y":1,"z":3.5}]}`
	if lines := w.Lines(); len(lines) != 1 || lines[0] != want {
		t.Errorf("wrote %v, want [%s]", lines, want)
	}
}
