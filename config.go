package groundlink

import (
	"strings"
	"time"
)

// Driver names accepted by WithDriver
const (
	DriverBugst  = "bugst"  // go.bug.st/serial, cross-platform (default)
	DriverTarm   = "tarm"   // github.com/tarm/serial
	DriverNative = "native" // Linux termios via x/sys/unix
)

// AutoPort asks Connect to pick a port through PickPort.
const AutoPort = "auto"

// ConnectionConfig holds the settings a Link is opened with
type ConnectionConfig struct {
	Port         string // empty or AutoPort to auto-detect
	BaudRate     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Driver       string
}

// WatchdogConfig controls heartbeat debouncing
type WatchdogConfig struct {
	Timeout  time.Duration
	Grace    uint
	Interval time.Duration
}

// Option is a functional option for configuring a link
type Option func(*ConnectionConfig) error

// DefaultConfig returns the radio defaults: 9600 baud, 200ms read, 500ms write
func DefaultConfig() ConnectionConfig {
	return ConnectionConfig{
		BaudRate:     9600,
		ReadTimeout:  200 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		Driver:       DriverBugst,
	}
}

// DefaultWatchdogConfig returns a 6s timeout, 2 misses of grace, polled every 500ms
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		Timeout:  6 * time.Second,
		Grace:    2,
		Interval: 500 * time.Millisecond,
	}
}

// NewConfig applies opts on top of DefaultConfig
func NewConfig(opts ...Option) (ConnectionConfig, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return ConnectionConfig{}, err
		}
	}
	return cfg, nil
}

// AutoDetect reports whether the port should be picked by discovery
func (c ConnectionConfig) AutoDetect() bool {
	p := strings.TrimSpace(c.Port)
	return p == "" || strings.EqualFold(p, AutoPort)
}

// WithPort sets the device name (e.g. /dev/ttyUSB0 or COM5)
func WithPort(name string) Option {
	return func(c *ConnectionConfig) error {
		c.Port = strings.TrimSpace(name)
		return nil
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *ConnectionConfig) error {
		if rate <= 0 {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithReadTimeout sets how long a read blocks waiting for the first byte
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *ConnectionConfig) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithWriteTimeout bounds a single line write
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *ConnectionConfig) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.WriteTimeout = timeout
		return nil
	}
}

// WithDriver selects the serial backend
func WithDriver(name string) Option {
	return func(c *ConnectionConfig) error {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			name = DriverBugst
		}
		if _, ok := drivers[name]; !ok {
			return ErrUnknownDriver
		}
		c.Driver = name
		return nil
	}
}
