package groundlink

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultAltitude is used when a waypoint omits z
const DefaultAltitude = 3.5

// Waypoint is a mission target in the vehicle's local frame
type Waypoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// ParseWaypoint builds a Waypoint from an untyped mapping. x and y are
// required, z defaults to DefaultAltitude. Numeric strings are accepted.
func ParseWaypoint(raw map[string]any) (Waypoint, error) {
	if raw == nil {
		return Waypoint{}, fmt.Errorf("%w: not an object", ErrInvalidWaypoint)
	}

	x, err := waypointField(raw, "x")
	if err != nil {
		return Waypoint{}, err
	}
	y, err := waypointField(raw, "y")
	if err != nil {
		return Waypoint{}, err
	}

	z := DefaultAltitude
	if _, ok := raw["z"]; ok {
		if z, err = waypointField(raw, "z"); err != nil {
			return Waypoint{}, err
		}
	}

	return Waypoint{X: x, Y: y, Z: z}, nil
}

func waypointField(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidWaypoint, key)
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidWaypoint, key, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidWaypoint, key, t)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidWaypoint, key, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrInvalidWaypoint, key)
	}
	return f, nil
}

// WaypointStore holds the current mission. Safe for concurrent use.
type WaypointStore struct {
	log zerolog.Logger

	mu        sync.RWMutex
	waypoints []Waypoint
}

// NewWaypointStore returns an empty store
func NewWaypointStore(log zerolog.Logger) *WaypointStore {
	return &WaypointStore{log: log}
}

// ReplaceAll parses every element and replaces the mission with the valid
// ones, in order. Invalid elements are logged with their 1-based position.
func (s *WaypointStore) ReplaceAll(raw []map[string]any) int {
	parsed := make([]Waypoint, 0, len(raw))
	for i, item := range raw {
		wp, err := ParseWaypoint(item)
		if err != nil {
			s.log.Warn().Err(err).Int("index", i+1).Msg("skipping invalid waypoint")
			continue
		}
		parsed = append(parsed, wp)
	}

	s.mu.Lock()
	s.waypoints = parsed
	s.mu.Unlock()

	s.log.Info().Int("count", len(parsed)).Int("rejected", len(raw)-len(parsed)).Msg("waypoints updated")
	return len(parsed)
}

// Set replaces the mission with already validated waypoints
func (s *WaypointStore) Set(waypoints []Waypoint) {
	cp := make([]Waypoint, len(waypoints))
	copy(cp, waypoints)

	s.mu.Lock()
	s.waypoints = cp
	s.mu.Unlock()
}

// RemoveAt deletes the waypoint at the 1-based index
func (s *WaypointStore) RemoveAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.waypoints) == 0 {
		s.log.Warn().Int("index", index).Msg("no waypoints to remove")
		return ErrNoWaypoints
	}
	if index < 1 || index > len(s.waypoints) {
		s.log.Warn().Int("index", index).Int("count", len(s.waypoints)).Msg("waypoint index out of range")
		return fmt.Errorf("%w: %d not in [1, %d]", ErrWaypointIndex, index, len(s.waypoints))
	}

	i := index - 1
	s.waypoints = append(s.waypoints[:i:i], s.waypoints[i+1:]...)
	return nil
}

// List returns a copy of the mission
func (s *WaypointStore) List() []Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Waypoint, len(s.waypoints))
	copy(out, s.waypoints)
	return out
}

// Len returns the number of waypoints
func (s *WaypointStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.waypoints)
}
