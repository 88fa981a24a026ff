package components

import (
	"strings"
	"testing"
	"time"

	groundlink "github.com/allbin/go-groundlink"
)

func TestParseWaypointInput(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]any
		wantErr bool
	}{
		{"1 2", map[string]any{"x": "1", "y": "2"}, false},
		{"1, 2, 5", map[string]any{"x": "1", "y": "2", "z": "5"}, false},
		{"  -1.5\t2e1 ", map[string]any{"x": "-1.5", "y": "2e1"}, false},
		{"1", nil, true},
		{"", nil, true},
		{"1 2 3 4", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseWaypointInput(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWaypointInput(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseWaypointInput(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParseWaypointInput(%q)[%s] = %v, want %v", tt.in, k, got[k], v)
			}
		}
	}
}

func TestParsedInputIsAValidWaypoint(t *testing.T) {
	raw, err := ParseWaypointInput("3 4")
	if err != nil {
		t.Fatal(err)
	}
	wp, err := groundlink.ParseWaypoint(raw)
	if err != nil {
		t.Fatalf("ParseWaypoint failed: %v", err)
	}
	if wp != (groundlink.Waypoint{X: 3, Y: 4, Z: groundlink.DefaultAltitude}) {
		t.Errorf("waypoint = %+v", wp)
	}
}

func TestWaypointInputHistory(t *testing.T) {
	in := NewWaypointInput()
	in.AddToHistory("1 1")
	in.AddToHistory("2 2")
	in.AddToHistory("2 2")
	in.AddToHistory("   ")

	in.SetValue("draft")
	in.NavigateHistoryUp()
	if in.Value() != "2 2" {
		t.Errorf("up = %q, want 2 2", in.Value())
	}
	in.NavigateHistoryUp()
	in.NavigateHistoryUp()
	if in.Value() != "1 1" {
		t.Errorf("up twice = %q, want 1 1", in.Value())
	}
	in.NavigateHistoryDown()
	in.NavigateHistoryDown()
	if in.Value() != "draft" {
		t.Errorf("back down = %q, want draft", in.Value())
	}
}

func TestHeartbeatAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	if got := heartbeatAge(time.Time{}, now); got != "hb --" {
		t.Errorf("no heartbeat = %q", got)
	}
	if got := heartbeatAge(now.Add(-2500*time.Millisecond), now); got != "hb 2.5s" {
		t.Errorf("age = %q, want hb 2.5s", got)
	}
}

func TestEventFormatter(t *testing.T) {
	f := NewEventFormatter()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	line := f.Format(EntryFromEvent(at, groundlink.Speed{Value: 2}))
	for _, want := range []string{"12:00:00.000", "RX", "2.00"} {
		if !strings.Contains(line, want) {
			t.Errorf("%q does not contain %q", line, want)
		}
	}

	f.ShowTimestamps = false
	line = f.Format(LogEntry{Timestamp: at, Direction: DirTX, Text: "ON", Status: StatusWritten})
	if strings.Contains(line, "12:00") || !strings.Contains(line, "TX ✓") {
		t.Errorf("unexpected TX line %q", line)
	}
}

func TestEventLogLimit(t *testing.T) {
	l := NewEventLog(80, 10)
	for i := 0; i < DefaultLogLimit+25; i++ {
		l.Add(LogEntry{Timestamp: time.Now(), Direction: DirInfo, Text: "tick"})
	}
	if l.Len() != DefaultLogLimit {
		t.Errorf("Len() = %d, want %d", l.Len(), DefaultLogLimit)
	}
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() after Clear = %d", l.Len())
	}
}

func TestWaypointTable(t *testing.T) {
	wt := NewWaypointTable(5)
	if wt.Selected() != -1 {
		t.Errorf("empty Selected() = %d, want -1", wt.Selected())
	}

	wt.SetWaypoints([]groundlink.Waypoint{{X: 1, Y: 2, Z: 3.5}, {X: 4, Y: 5, Z: 6}})
	if wt.Len() != 2 || wt.Selected() != 0 {
		t.Errorf("Len/Selected = %d/%d, want 2/0", wt.Len(), wt.Selected())
	}
	if !strings.Contains(wt.View(), "3.50") {
		t.Errorf("view does not show the altitude:\n%s", wt.View())
	}

	wt.SetWaypoints(nil)
	if wt.Selected() != -1 {
		t.Errorf("Selected() after clearing = %d", wt.Selected())
	}
}

func TestTelemetryTableRows(t *testing.T) {
	tt := NewTelemetryTable(40, 6)
	tt.SetRows([]TelemetryRow{{Label: "Link", Value: "up"}, {Label: "Speed", Value: "1.00"}})

	rows := tt.Rows()
	if len(rows) != 2 || rows[1].Value != "1.00" {
		t.Errorf("Rows() = %+v", rows)
	}
}
