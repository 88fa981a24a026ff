package groundlink

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the raw device a Link drives. Read must return (0, nil) once the
// configured read timeout expires without data.
type Port interface {
	io.ReadWriteCloser
	Drain() error
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

// Opener opens a port for the given config
type Opener func(name string, cfg ConnectionConfig) (Port, error)

var drivers = map[string]Opener{
	DriverBugst:  openBugst,
	DriverTarm:   openTarm,
	DriverNative: openNative,
}

// Ensure the go.bug.st port satisfies Port at compile time
var _ Port = (serial.Port)(nil)

// openerFor resolves a driver name to its opener
func openerFor(name string) (Opener, error) {
	if name == "" {
		name = DriverBugst
	}
	open, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	return open, nil
}

// openBugst opens name through go.bug.st/serial, 8N1
func openBugst(name string, cfg ConnectionConfig) (Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	if err := p.SetReadTimeout(readTimeoutOrDefault(cfg.ReadTimeout)); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return p, nil
}

func readTimeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultConfig().ReadTimeout
	}
	return d
}
