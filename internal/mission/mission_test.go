package mission

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    int
	}{
		{"yaml list", "m.yaml", "- {x: 1, y: 2}\n- {x: 3, y: 4, z: 9}\n", 2},
		{"yaml key", "m.yml", "waypoints:\n  - x: 1\n    y: 2\n", 1},
		{"json key", "m.json", `{"waypoints":[{"x":1,"y":2},{"x":"3","y":4}]}`, 2},
		{"json list", "m.json", `[{"x":1,"y":2}]`, 1},
		{"empty file", "m.yaml", "", 0},
		{"empty list", "m.yaml", "waypoints: []\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(raw) != tt.want {
				t.Errorf("got %d items, want %d", len(raw), tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"extension", "m.txt", "[]", ErrUnsupportedFormat},
		{"syntax", "m.json", `{"waypoints": [`, ErrMalformed},
		{"no key", "m.yaml", "points: []\n", ErrMalformed},
		{"not a list", "m.yaml", "waypoints: 3\n", ErrMalformed},
		{"scalar", "m.yaml", "hello\n", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want not exist", err)
	}
}

func TestLoadFeedsWaypointStore(t *testing.T) {
	path := writeFile(t, "m.yaml", `
waypoints:
  - {x: 1, y: 2}
  - just a string
  - {x: 5, y: true}
  - {x: -1.5, y: 0, z: 12}
`)
	raw, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(raw) != 4 {
		t.Fatalf("got %d items, want 4 (invalid ones kept for reporting)", len(raw))
	}

	store := groundlink.NewWaypointStore(zerolog.Nop())
	if n := store.ReplaceAll(raw); n != 2 {
		t.Fatalf("ReplaceAll accepted %d, want 2", n)
	}
	want := []groundlink.Waypoint{{X: 1, Y: 2, Z: groundlink.DefaultAltitude}, {X: -1.5, Y: 0, Z: 12}}
	for i, wp := range store.List() {
		if wp != want[i] {
			t.Errorf("waypoint %d = %+v, want %+v", i, wp, want[i])
		}
	}
}

func TestSaveThenLoad(t *testing.T) {
	wps := []groundlink.Waypoint{{X: 1, Y: 2, Z: 3.5}, {X: -4, Y: 0.25, Z: 10}}

	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, wps); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			raw, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(raw) != len(wps) {
				t.Fatalf("got %d items, want %d", len(raw), len(wps))
			}
			for i, item := range raw {
				wp, err := groundlink.ParseWaypoint(item)
				if err != nil || wp != wps[i] {
					t.Errorf("item %d = (%+v, %v), want %+v", i, wp, err, wps[i])
				}
			}
		})
	}

	if err := Save(filepath.Join(t.TempDir(), "out.csv"), wps); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save(csv) = %v, want ErrUnsupportedFormat", err)
	}
}
