package groundlink

import (
	"math"
	"reflect"
	"testing"
)

const sampleStream = "{\"hb\":1}\n" +
	"noise{\"x\":1.5,\"y\":-2,\"z\":3}tail\r\n" +
	"{\"lat\":59.33,\"lon\":18.06,\"alt\":12.5,\"speed\":4.2}\n" +
	"\n" +
	"{\"battery\":{\"percent\":0.5,\"voltage\":11.1}}\n" +
	"garbage without braces\n" +
	"{\"x\":1,\"y\":\n" +
	"{\"hb\":1,\"percent\":80,\"vel\":1}\n" +
	"\xff\xfe{\"volt\":12.6}\n" +
	"{\"hb\":\"1\"}\n"

func TestFrameReaderChunkingInvariant(t *testing.T) {
	whole := NewFrameReader().Feed([]byte(sampleStream))
	if len(whole) == 0 {
		t.Fatal("expected events from sample stream")
	}

	data := []byte(sampleStream)
	for split := 0; split <= len(data); split++ {
		r := NewFrameReader()
		var got []Event
		got = append(got, r.Feed(data[:split])...)
		got = append(got, r.Feed(data[split:])...)
		if !eventsEqual(got, whole) {
			t.Fatalf("split at %d: got %v, want %v", split, got, whole)
		}
		if r.Pending() != 0 {
			t.Errorf("split at %d: %d bytes still pending", split, r.Pending())
		}
	}

	r := NewFrameReader()
	var got []Event
	for i := range data {
		got = append(got, r.Feed(data[i:i+1])...)
	}
	if !eventsEqual(got, whole) {
		t.Errorf("byte-by-byte: got %v, want %v", got, whole)
	}
}

func TestFrameReaderEvents(t *testing.T) {
	got := NewFrameReader().Feed([]byte(sampleStream))

	want := []Event{
		Heartbeat{},
		LocalPose{X: 1.5, Y: -2, Z: 3},
		GlobalPose{Lat: 59.33, Lon: 18.06, Alt: 12.5},
		Speed{Value: 4.2},
		Battery{Percent: 50, Voltage: 11.1},
		Heartbeat{},
		Battery{Percent: 80, Voltage: math.NaN()},
		Speed{Value: 1},
		Battery{Percent: -1, Voltage: 12.6},
		Heartbeat{},
	}
	if !eventsEqual(got, want) {
		t.Errorf("Feed() = %v, want %v", got, want)
	}
}

func TestFrameReaderPartial(t *testing.T) {
	r := NewFrameReader()

	if got := r.Feed([]byte(`{"hb":`)); len(got) != 0 {
		t.Errorf("expected no events from partial frame, got %v", got)
	}
	if r.Pending() != 6 {
		t.Errorf("Pending() = %d, want 6", r.Pending())
	}

	got := r.Feed([]byte("1}\n{\"speed\""))
	if !eventsEqual(got, []Event{Heartbeat{}}) {
		t.Errorf("Feed() = %v, want heartbeat", got)
	}

	r.Reset()
	if r.Pending() != 0 {
		t.Errorf("Pending() after Reset = %d, want 0", r.Pending())
	}
}

func TestParseLineGarbage(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"hello",
		"}{",
		"{",
		"}",
		`{"x":1,"y":2,"z":}`,
		`{"hb":1} junk {"hb":1}`,
		`{"x":"1","y":"2","z":"3"}`,
		`{"x":true,"y":false,"z":1}`,
		`{"hb":0}`,
		`{"hb":2}`,
		`{"lat":1,"lon":2}`,
		`{"battery":"full"}`,
		`{"speed":null}`,
	}

	for _, line := range lines {
		if got := ParseLine(line); len(got) != 0 {
			t.Errorf("ParseLine(%q) = %v, want no events", line, got)
		}
	}
}

func TestParseLineGarbageDoesNotCorruptNextLine(t *testing.T) {
	r := NewFrameReader()
	got := r.Feed([]byte("{\"x\":1,\"y\"\n{{{\n{\"speed\":2}\n"))

	if !eventsEqual(got, []Event{Speed{Value: 2}}) {
		t.Errorf("Feed() = %v, want only the speed event", got)
	}
}

func TestBatteryNormalization(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantPercent float64
		wantVoltage float64 // NaN = unknown
	}{
		{"fraction", `{"percent":0.75}`, 75, math.NaN()},
		{"percentage", `{"percent":75}`, 75, math.NaN()},
		{"nested", `{"battery":{"percent":0.5,"voltage":11.1}}`, 50, 11.1},
		{"exactly one is a fraction", `{"percent":1.0}`, 100, math.NaN()},
		{"bare battery", `{"battery":0.2}`, 20, math.NaN()},
		{"top-level percent wins", `{"percent":90,"battery":{"percent":0.1}}`, 90, math.NaN()},
		{"nested beats bare", `{"battery":{"percent":40}}`, 40, math.NaN()},
		{"voltage only", `{"voltage":12.3}`, -1, 12.3},
		{"nested voltage first", `{"battery":{"voltage":11.0},"voltage":12.0}`, -1, 11.0},
		{"volt fallback", `{"percent":55,"volt":10.5}`, 55, 10.5},
		{"boolean percent ignored", `{"percent":true,"voltage":12}`, -1, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := ParseLine(tt.line)
			if len(events) != 1 {
				t.Fatalf("ParseLine(%s) = %v, want one battery event", tt.line, events)
			}
			b, ok := events[0].(Battery)
			if !ok {
				t.Fatalf("ParseLine(%s) = %T, want Battery", tt.line, events[0])
			}
			if math.Abs(b.Percent-tt.wantPercent) > 1e-9 {
				t.Errorf("Percent = %v, want %v", b.Percent, tt.wantPercent)
			}
			if math.IsNaN(tt.wantVoltage) {
				if b.HasVoltage() {
					t.Errorf("Voltage = %v, want unknown", b.Voltage)
				}
			} else if math.Abs(b.Voltage-tt.wantVoltage) > 1e-9 {
				t.Errorf("Voltage = %v, want %v", b.Voltage, tt.wantVoltage)
			}
		})
	}
}

func TestHeartbeatValues(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`{"hb":1}`, true},
		{`{"hb":1.0}`, true},
		{`{"hb":1.7}`, false},
		{`{"hb":1.9}`, false},
		{`{"hb":0.9}`, false},
		{`{"hb":"1"}`, true},
		{`{"hb":0}`, false},
		{`{"hb":true}`, false},
		{`{"hb":"yes"}`, false},
		{`{"heartbeat":1}`, false},
	}

	for _, tt := range tests {
		events := ParseLine(tt.line)
		got := len(events) == 1 && events[0].Kind() == KindHeartbeat
		if got != tt.want {
			t.Errorf("ParseLine(%s) heartbeat = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`[{"hb":1}]`, `{"hb":1}`},
		{`xx{"a":1}yy`, `{"a":1}`},
		{`{"a":{"b":1}}`, `{"a":{"b":1}}`},
		{`no braces`, ""},
		{`}{`, ""},
		{`{`, ""},
	}

	for _, tt := range tests {
		if got := extractObject(tt.line); got != tt.want {
			t.Errorf("extractObject(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

// eventsEqual compares event slices treating NaN voltages as equal
func eventsEqual(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ba, aok := a[i].(Battery)
		bb, bok := b[i].(Battery)
		if aok && bok {
			if ba.Percent != bb.Percent || ba.HasVoltage() != bb.HasVoltage() ||
				(ba.HasVoltage() && ba.Voltage != bb.Voltage) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
