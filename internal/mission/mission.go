// Package mission reads and writes waypoint files.
//
// A mission file is YAML or JSON holding either a bare list of waypoints or
// a mapping with a "waypoints" key:
//
//	waypoints:
//	  - {x: 0, y: 0}
//	  - {x: 10, y: 5, z: 8}
package mission

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	groundlink "github.com/allbin/go-groundlink"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported mission file format")
	ErrMalformed         = errors.New("malformed mission file")
)

type document struct {
	Waypoints []groundlink.Waypoint `json:"waypoints" yaml:"waypoints"`
}

func checkExt(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the raw waypoint mappings from path. Items are not validated
// here; WaypointStore.ReplaceAll drops the invalid ones.
func Load(path string) ([]map[string]any, error) {
	if err := checkExt(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mission: %w", err)
	}
	return Parse(data)
}

// Parse decodes a mission document. JSON is valid YAML, so one decoder
// serves both.
func Parse(data []byte) ([]map[string]any, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch v := root.(type) {
	case nil:
		return nil, nil
	case []any:
		return items(v)
	case map[string]any:
		list, ok := v["waypoints"]
		if !ok {
			return nil, fmt.Errorf("%w: missing waypoints key", ErrMalformed)
		}
		if list == nil {
			return nil, nil
		}
		seq, ok := list.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: waypoints is not a list", ErrMalformed)
		}
		return items(seq)
	default:
		return nil, fmt.Errorf("%w: unexpected top-level %T", ErrMalformed, root)
	}
}

// items keeps mappings and turns anything else into an empty item, so the
// store reports it at its original index
func items(seq []any) ([]map[string]any, error) {
	out := make([]map[string]any, len(seq))
	for i, item := range seq {
		m, ok := item.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		out[i] = m
	}
	return out, nil
}

// Save writes wps under a waypoints key, as JSON for .json paths and YAML
// otherwise
func Save(path string, wps []groundlink.Waypoint) error {
	if err := checkExt(path); err != nil {
		return err
	}
	if wps == nil {
		wps = []groundlink.Waypoint{}
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(document{Waypoints: wps}, "", "  ")
	} else {
		data, err = yaml.Marshal(document{Waypoints: wps})
	}
	if err != nil {
		return fmt.Errorf("encode mission: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write mission: %w", err)
	}
	return nil
}
