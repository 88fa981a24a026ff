package groundlink

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSettleDelay is how long Connect waits after opening so boot noise
// from the radio is not consumed as telemetry
const DefaultSettleDelay = 200 * time.Millisecond

// Link owns one serial connection. Writes are serialized by a transmit
// mutex; only one goroutine is expected to Read.
type Link struct {
	cfg    ConnectionConfig
	log    zerolog.Logger
	opener Opener
	settle time.Duration

	mu       sync.RWMutex
	port     Port
	name     string
	resolved string // port picked by the first auto-detect

	// transmit lock; a 1-slot semaphore so waiting for it can time out
	tx chan struct{}
}

// LinkOption configures a Link
type LinkOption func(*Link)

// WithLogger sets the logger used for connection diagnostics
func WithLogger(log zerolog.Logger) LinkOption {
	return func(l *Link) {
		l.log = log
	}
}

// WithSettleDelay overrides DefaultSettleDelay
func WithSettleDelay(d time.Duration) LinkOption {
	return func(l *Link) {
		if d >= 0 {
			l.settle = d
		}
	}
}

// WithOpener bypasses the configured driver
func WithOpener(open Opener) LinkOption {
	return func(l *Link) {
		l.opener = open
	}
}

// NewLink returns a closed link for cfg
func NewLink(cfg ConnectionConfig, opts ...LinkOption) *Link {
	l := &Link{
		cfg:    cfg,
		log:    zerolog.Nop(),
		settle: DefaultSettleDelay,
		tx:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the configuration the link was created with
func (l *Link) Config() ConnectionConfig {
	return l.cfg
}

// IsOpen reports whether the port is open
func (l *Link) IsOpen() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.port != nil
}

// PortName returns the device currently open, or the last one resolved
func (l *Link) PortName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.name != "" {
		return l.name
	}
	if !l.cfg.AutoDetect() {
		return l.cfg.Port
	}
	return l.resolved
}

// Connect opens the port. It is a no-op when already open. On failure the
// link stays closed, the available ports are logged and a *LinkError is
// returned.
func (l *Link) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port != nil {
		return nil
	}

	name := l.cfg.Port
	if l.cfg.AutoDetect() {
		if l.resolved == "" {
			l.resolved = PickPort()
		}
		name = l.resolved
	}
	if name == "" {
		return l.connectFailed(name, ErrNoPortFound)
	}

	open := l.opener
	if open == nil {
		var err error
		if open, err = openerFor(l.cfg.Driver); err != nil {
			return l.connectFailed(name, err)
		}
	}

	port, err := open(name, l.cfg)
	if err != nil {
		return l.connectFailed(name, err)
	}

	if err := port.ResetInputBuffer(); err != nil {
		l.log.Warn().Err(err).Str("port", name).Msg("failed to reset input buffer")
	}
	if err := port.ResetOutputBuffer(); err != nil {
		l.log.Warn().Err(err).Str("port", name).Msg("failed to reset output buffer")
	}
	if l.settle > 0 {
		time.Sleep(l.settle)
	}

	l.port = port
	l.name = name
	l.log.Info().
		Str("port", name).
		Int("baud", l.cfg.BaudRate).
		Str("driver", l.driverName()).
		Msg("connected")
	return nil
}

func (l *Link) driverName() string {
	if l.opener != nil {
		return "custom"
	}
	if l.cfg.Driver == "" {
		return DriverBugst
	}
	return l.cfg.Driver
}

func (l *Link) connectFailed(name string, err error) error {
	l.log.Error().Err(err).Str("port", name).Int("baud", l.cfg.BaudRate).Msg("connect failed")

	infos, listErr := ListPortDetails()
	switch {
	case listErr != nil:
		l.log.Warn().Err(listErr).Msg("could not enumerate serial ports")
	case len(infos) == 0:
		l.log.Info().Msg("no serial ports available")
	default:
		for _, info := range infos {
			l.log.Info().Str("port", info.Path).Str("description", info.Description).Msg("available port")
		}
	}

	return &LinkError{Kind: KindConnection, Op: "connect", Port: name, Err: err}
}

// Disconnect closes the port. Close errors are logged and dropped.
func (l *Link) Disconnect() {
	l.mu.Lock()
	port, name := l.port, l.name
	l.port = nil
	l.name = ""
	l.mu.Unlock()

	if port == nil {
		return
	}
	if err := port.Close(); err != nil {
		l.log.Debug().Err(err).Str("port", name).Msg("close failed")
	}
	l.log.Info().Str("port", name).Msg("disconnected")
}

// WriteLine writes text followed by a single newline as one write, then
// drains. Waiting for the transmit lock and the write itself share
// WriteTimeout. A write that times out keeps the lock until the device
// accepts the line or the port is closed, so lines never interleave.
func (l *Link) WriteLine(text string) error {
	l.mu.RLock()
	port, name := l.port, l.name
	l.mu.RUnlock()

	if port == nil {
		l.log.Warn().Str("line", text).Msg("write on closed link")
		return &LinkError{Kind: KindIO, Op: "write", Err: ErrLinkClosed}
	}

	line := []byte(strings.TrimRight(text, "\r\n") + "\n")

	timeout := l.cfg.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().WriteTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.tx <- struct{}{}:
	case <-timer.C:
		l.log.Warn().Str("port", name).Dur("timeout", timeout).Msg("transmit lock busy, write timed out")
		return &LinkError{Kind: KindIO, Op: "write", Port: name, Err: ErrWriteTimeout}
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-l.tx }()
		_, err := port.Write(line)
		if err == nil {
			err = port.Drain()
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			l.log.Warn().Err(err).Str("port", name).Msg("write failed")
			return &LinkError{Kind: KindIO, Op: "write", Port: name, Err: err}
		}
		return nil
	case <-timer.C:
		l.log.Warn().Str("port", name).Dur("timeout", timeout).Msg("write timed out")
		return &LinkError{Kind: KindIO, Op: "write", Port: name, Err: ErrWriteTimeout}
	}
}

// Read reads into buf. It returns (0, nil) when the read timeout expires.
func (l *Link) Read(buf []byte) (int, error) {
	l.mu.RLock()
	port, name := l.port, l.name
	l.mu.RUnlock()

	if port == nil {
		return 0, &LinkError{Kind: KindIO, Op: "read", Err: ErrLinkClosed}
	}

	n, err := port.Read(buf)
	if err != nil {
		return n, &LinkError{Kind: KindIO, Op: "read", Port: name, Err: err}
	}
	return n, nil
}
