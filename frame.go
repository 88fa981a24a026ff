package groundlink

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// FrameReader reassembles newline-delimited frames from arbitrary chunks and
// decodes them into events. It is not safe for concurrent use; the receive
// loop owns it.
type FrameReader struct {
	buf []byte
}

// NewFrameReader returns an empty reader
func NewFrameReader() *FrameReader {
	return &FrameReader{}
}

// Feed appends chunk and returns the events of every line it completed.
// Incomplete trailing data stays buffered for the next call.
func (r *FrameReader) Feed(chunk []byte) []Event {
	r.buf = append(r.buf, chunk...)

	var events []Event
	start := 0
	for {
		idx := bytes.IndexByte(r.buf[start:], '\n')
		if idx < 0 {
			break
		}
		line := r.buf[start : start+idx]
		start += idx + 1
		events = append(events, ParseLine(string(line))...)
	}

	if start > 0 {
		r.buf = append(r.buf[:0], r.buf[start:]...)
	}
	return events
}

// Pending returns the number of buffered bytes not yet terminated by a newline
func (r *FrameReader) Pending() int {
	return len(r.buf)
}

// Reset drops any partial frame
func (r *FrameReader) Reset() {
	r.buf = r.buf[:0]
}

// ParseLine decodes a single frame. Lines without a {...} span or with
// invalid JSON yield no events; radio noise is expected and never an error.
func ParseLine(line string) []Event {
	line = strings.TrimSpace(strings.ToValidUTF8(line, "\uFFFD"))
	if line == "" {
		return nil
	}

	obj := extractObject(line)
	if obj == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(obj))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil || data == nil {
		return nil
	}
	// trailing garbage between the braces makes the frame invalid
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}

	return decodeFrame(data)
}

// extractObject returns line[first '{' : last '}'] inclusive, or ""
func extractObject(line string) string {
	start := strings.IndexByte(line, '{')
	end := strings.LastIndexByte(line, '}')
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return line[start : end+1]
}

func decodeFrame(data map[string]any) []Event {
	var events []Event

	if isHeartbeat(data["hb"]) {
		events = append(events, Heartbeat{})
	}

	if x, y, z, ok := numbers3(data, "x", "y", "z"); ok {
		events = append(events, LocalPose{X: x, Y: y, Z: z})
	}

	if lat, lon, alt, ok := numbers3(data, "lat", "lon", "alt"); ok {
		events = append(events, GlobalPose{Lat: lat, Lon: lon, Alt: alt})
	}

	if b, ok := decodeBattery(data); ok {
		events = append(events, b)
	}

	if v, ok := firstNumber(data, "speed", "vel"); ok {
		events = append(events, Speed{Value: v})
	}

	return events
}

// decodeBattery applies the percent/voltage lookup order and the fraction rule
func decodeBattery(data map[string]any) (Battery, bool) {
	nested, _ := data["battery"].(map[string]any)

	percent, havePercent := number(data["percent"])
	if !havePercent && nested != nil {
		percent, havePercent = number(nested["percent"])
	}
	if !havePercent {
		percent, havePercent = number(data["battery"])
	}

	var voltage float64
	haveVoltage := false
	if nested != nil {
		voltage, haveVoltage = number(nested["voltage"])
	}
	if !haveVoltage {
		voltage, haveVoltage = firstNumber(data, "voltage", "volt")
	}

	if !havePercent && !haveVoltage {
		return Battery{}, false
	}

	b := Battery{Percent: -1, Voltage: math.NaN()}
	if havePercent {
		b.Percent = normalizePercent(percent)
	}
	if haveVoltage {
		b.Voltage = voltage
	}
	return b, true
}

// normalizePercent treats values <= 1.0 as a 0..1 fraction
func normalizePercent(v float64) float64 {
	if v <= 1.0 {
		return v * 100.0
	}
	return v
}

// isHeartbeat accepts the integer 1, as a number or a numeric string.
// Fractions like 1.7 and booleans are not heartbeats.
func isHeartbeat(v any) bool {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 1
	case float64:
		return t == 1
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return err == nil && n == 1
	default:
		return false
	}
}

// number accepts JSON numbers only; strings and booleans are not numbers here
func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func firstNumber(data map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := number(data[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func numbers3(data map[string]any, a, b, c string) (float64, float64, float64, bool) {
	x, ok := number(data[a])
	if !ok {
		return 0, 0, 0, false
	}
	y, ok := number(data[b])
	if !ok {
		return 0, 0, 0, false
	}
	z, ok := number(data[c])
	if !ok {
		return 0, 0, 0, false
	}
	return x, y, z, true
}
