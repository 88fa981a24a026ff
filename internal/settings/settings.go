// Package settings resolves the CLI configuration from flags, environment,
// an optional .env file and a YAML config file, in that order of precedence.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// GROUNDLINK_SERIAL_PORT
const EnvPrefix = "GROUNDLINK"

// ConfigName is the file name (without extension) searched for when no
// explicit config file is given
const ConfigName = "groundlink"

// Configuration keys
const (
	KeySerialPort         = "serial.port"
	KeySerialBaud         = "serial.baud"
	KeySerialReadTimeout  = "serial.read_timeout"
	KeySerialWriteTimeout = "serial.write_timeout"
	KeySerialDriver       = "serial.driver"
	KeyHeartbeatTimeout   = "heartbeat.timeout"
	KeyHeartbeatGrace     = "heartbeat.grace"
	KeyHeartbeatInterval  = "heartbeat.interval"
	KeyFlightLogPath      = "flightlog.path"
	KeyFlightLogEnable    = "flightlog.enable"
	KeyLogLevel           = "log.level"
)

var ErrInvalidSettings = errors.New("invalid settings")

type Serial struct {
	Port         string        `mapstructure:"port"`
	Baud         int           `mapstructure:"baud"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Driver       string        `mapstructure:"driver"`
}

type Heartbeat struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Grace    uint          `mapstructure:"grace"`
	Interval time.Duration `mapstructure:"interval"`
}

type FlightLog struct {
	Path   string `mapstructure:"path"`
	Enable bool   `mapstructure:"enable"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Settings is the fully resolved configuration
type Settings struct {
	Serial    Serial    `mapstructure:"serial"`
	Heartbeat Heartbeat `mapstructure:"heartbeat"`
	FlightLog FlightLog `mapstructure:"flightlog"`
	Log       Log       `mapstructure:"log"`
}

// SetDefaults registers every key so environment overrides are picked up
// by Unmarshal
func SetDefaults(v *viper.Viper) {
	link := groundlink.DefaultConfig()
	wd := groundlink.DefaultWatchdogConfig()

	v.SetDefault(KeySerialPort, groundlink.AutoPort)
	v.SetDefault(KeySerialBaud, link.BaudRate)
	v.SetDefault(KeySerialReadTimeout, link.ReadTimeout)
	v.SetDefault(KeySerialWriteTimeout, link.WriteTimeout)
	v.SetDefault(KeySerialDriver, link.Driver)
	v.SetDefault(KeyHeartbeatTimeout, wd.Timeout)
	v.SetDefault(KeyHeartbeatGrace, wd.Grace)
	v.SetDefault(KeyHeartbeatInterval, wd.Interval)
	v.SetDefault(KeyFlightLogPath, defaultFlightLogPath())
	v.SetDefault(KeyFlightLogEnable, false)
	v.SetDefault(KeyLogLevel, zerolog.LevelInfoValue)
}

func defaultFlightLogPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "groundlink", "flightlog.db")
	}
	return "flightlog.db"
}

// flagKeys maps persistent CLI flags onto configuration keys
var flagKeys = map[string]string{
	"baud":              KeySerialBaud,
	"driver":            KeySerialDriver,
	"read-timeout":      KeySerialReadTimeout,
	"write-timeout":     KeySerialWriteTimeout,
	"heartbeat-timeout": KeyHeartbeatTimeout,
	"flightlog":         KeyFlightLogPath,
	"record":            KeyFlightLogEnable,
	"log-level":         KeyLogLevel,
}

// BindFlags binds the flags present in fs; unknown ones are skipped
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// LoadDotEnv loads path into the process environment. A missing file is
// not an error; variables already set win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load resolves the settings. configFile may be empty to search the
// working directory and $HOME/.config/groundlink.
func Load(v *viper.Viper, configFile string) (Settings, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "groundlink"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects non-positive durations or baud rates, a zero heartbeat
// grace and unknown drivers
func (s Settings) Validate() error {
	if _, err := s.ConnectionConfig(); err != nil {
		return fmt.Errorf("%w: serial: %w", ErrInvalidSettings, err)
	}
	if s.Heartbeat.Timeout <= 0 {
		return fmt.Errorf("%w: heartbeat.timeout must be positive", ErrInvalidSettings)
	}
	if s.Heartbeat.Interval <= 0 {
		return fmt.Errorf("%w: heartbeat.interval must be positive", ErrInvalidSettings)
	}
	if s.Heartbeat.Grace < 1 {
		return fmt.Errorf("%w: heartbeat.grace must be at least 1", ErrInvalidSettings)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(s.Log.Level)); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidSettings, err)
	}
	if s.FlightLog.Enable && s.FlightLog.Path == "" {
		return fmt.Errorf("%w: flightlog.path is required when recording", ErrInvalidSettings)
	}
	return nil
}

// ConnectionConfig builds the link configuration
func (s Settings) ConnectionConfig() (groundlink.ConnectionConfig, error) {
	return groundlink.NewConfig(
		groundlink.WithPort(s.Serial.Port),
		groundlink.WithBaudRate(s.Serial.Baud),
		groundlink.WithReadTimeout(s.Serial.ReadTimeout),
		groundlink.WithWriteTimeout(s.Serial.WriteTimeout),
		groundlink.WithDriver(s.Serial.Driver),
	)
}

func (s Settings) WatchdogConfig() groundlink.WatchdogConfig {
	return groundlink.WatchdogConfig{
		Timeout:  s.Heartbeat.Timeout,
		Grace:    s.Heartbeat.Grace,
		Interval: s.Heartbeat.Interval,
	}
}

// WithPort returns a copy with the port overridden, unless port is empty
func (s Settings) WithPort(port string) Settings {
	if port != "" {
		s.Serial.Port = port
	}
	return s
}

// NewLogger builds a console logger at the configured level
func (s Settings) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(s.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
