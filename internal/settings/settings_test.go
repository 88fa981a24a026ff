package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// isolate keeps a developer's own config and environment out of the test
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"GROUNDLINK_SERIAL_PORT", "GROUNDLINK_SERIAL_BAUD", "GROUNDLINK_SERIAL_DRIVER",
		"GROUNDLINK_HEARTBEAT_TIMEOUT", "GROUNDLINK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Serial.Port != groundlink.AutoPort {
		t.Errorf("port = %q, want auto", s.Serial.Port)
	}
	if s.Serial.Baud != 9600 || s.Serial.Driver != groundlink.DriverBugst {
		t.Errorf("serial = %+v", s.Serial)
	}
	if s.WatchdogConfig() != groundlink.DefaultWatchdogConfig() {
		t.Errorf("watchdog = %+v, want defaults", s.WatchdogConfig())
	}
	if s.Log.Level != "info" || s.FlightLog.Enable {
		t.Errorf("log/flightlog = %+v %+v", s.Log, s.FlightLog)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "groundlink.yaml")
	content := `serial:
  port: /dev/ttyUSB3
  baud: 57600
  driver: tarm
heartbeat:
  timeout: 3s
  grace: 4
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Serial.Port != "/dev/ttyUSB3" || s.Serial.Baud != 57600 || s.Serial.Driver != "tarm" {
		t.Errorf("serial = %+v", s.Serial)
	}
	if s.Heartbeat.Timeout != 3*time.Second || s.Heartbeat.Grace != 4 {
		t.Errorf("heartbeat = %+v", s.Heartbeat)
	}
	// untouched keys keep their defaults
	if s.Heartbeat.Interval != 500*time.Millisecond {
		t.Errorf("interval = %v, want 500ms", s.Heartbeat.Interval)
	}
	if s.Log.Level != "debug" {
		t.Errorf("level = %q", s.Log.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load with a missing explicit config succeeded")
	}
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("GROUNDLINK_SERIAL_PORT", "COM7")
	t.Setenv("GROUNDLINK_SERIAL_BAUD", "115200")
	t.Setenv("GROUNDLINK_HEARTBEAT_TIMEOUT", "2s")

	s, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Serial.Port != "COM7" || s.Serial.Baud != 115200 {
		t.Errorf("serial = %+v", s.Serial)
	}
	if s.Heartbeat.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", s.Heartbeat.Timeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GROUNDLINK_SERIAL_DRIVER=native\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GROUNDLINK_SERIAL_DRIVER") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env = %v, want nil", err)
	}

	s, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Serial.Driver != groundlink.DriverNative {
		t.Errorf("driver = %q, want native", s.Serial.Driver)
	}
}

func TestBindFlags(t *testing.T) {
	isolate(t)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("baud", 0, "")
	fs.String("log-level", "", "")
	if err := fs.Parse([]string{"--baud", "19200"}); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := BindFlags(v, fs); err != nil {
		t.Fatalf("BindFlags failed: %v", err)
	}
	s, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Serial.Baud != 19200 {
		t.Errorf("baud = %d, want 19200", s.Serial.Baud)
	}
	// an unset flag does not shadow the default
	if s.Log.Level != "info" {
		t.Errorf("level = %q, want info", s.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			Serial:    Serial{Port: "auto", Baud: 9600, ReadTimeout: time.Second, WriteTimeout: time.Second, Driver: "bugst"},
			Heartbeat: Heartbeat{Timeout: time.Second, Grace: 2, Interval: time.Second},
			Log:       Log{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"valid", func(*Settings) {}, true},
		{"zero baud", func(s *Settings) { s.Serial.Baud = 0 }, false},
		{"negative read timeout", func(s *Settings) { s.Serial.ReadTimeout = -time.Second }, false},
		{"zero write timeout", func(s *Settings) { s.Serial.WriteTimeout = 0 }, false},
		{"unknown driver", func(s *Settings) { s.Serial.Driver = "pyserial" }, false},
		{"zero heartbeat timeout", func(s *Settings) { s.Heartbeat.Timeout = 0 }, false},
		{"zero interval", func(s *Settings) { s.Heartbeat.Interval = 0 }, false},
		{"zero grace", func(s *Settings) { s.Heartbeat.Grace = 0 }, false},
		{"bad level", func(s *Settings) { s.Log.Level = "loud" }, false},
		{"record without path", func(s *Settings) { s.FlightLog.Enable = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestWithPort(t *testing.T) {
	s := Settings{Serial: Serial{Port: "auto"}}
	if got := s.WithPort("").Serial.Port; got != "auto" {
		t.Errorf("empty override changed port to %q", got)
	}
	if got := s.WithPort("/dev/ttyACM0").Serial.Port; got != "/dev/ttyACM0" {
		t.Errorf("override = %q", got)
	}
}
