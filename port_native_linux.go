//go:build linux

package groundlink

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// nativePort is a raw termios port driven directly through x/sys/unix.
// Close never waits for in-flight I/O: it flushes both queues so a blocked
// write or drain returns, then closes the descriptor.
type nativePort struct {
	fd     int
	closed atomic.Bool
}

// Ensure nativePort implements Port interface at compile time
var _ Port = (*nativePort)(nil)

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// readTimeoutTenths converts a read timeout to VTIME deciseconds (1-255)
func readTimeoutTenths(d time.Duration) uint8 {
	tenths := (d + 99*time.Millisecond) / (100 * time.Millisecond)
	if tenths < 1 {
		return 1
	}
	if tenths > 255 {
		return 255
	}
	return uint8(tenths)
}

func openNative(name string, cfg ConnectionConfig) (Port, error) {
	baudRate, err := getBaudRate(cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	if err := configurePort(fd, baudRate, readTimeoutTenths(readTimeoutOrDefault(cfg.ReadTimeout))); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &nativePort{fd: fd}, nil
}

// configurePort puts fd in raw 8N1 mode with an inter-byte read timeout
func configurePort(fd int, baudRate uint32, vtime uint8) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0: return whatever arrived once VTIME expires
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = vtime

	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}
	return nil
}

func (p *nativePort) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrLinkClosed
	}
	_ = unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIOFLUSH)
	return unix.Close(p.fd)
}

func (p *nativePort) Read(buf []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrLinkClosed
	}

	for {
		n, err := unix.Read(p.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func (p *nativePort) Write(data []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrLinkClosed
	}

	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			if p.closed.Load() {
				return written, ErrLinkClosed
			}
			return written, err
		}
		written += n
	}
	return written, nil
}

// Drain waits until all output written to the port has been transmitted
func (p *nativePort) Drain() error {
	if p.closed.Load() {
		return ErrLinkClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
}

// ResetInputBuffer discards any unread input data
func (p *nativePort) ResetInputBuffer() error {
	if p.closed.Load() {
		return ErrLinkClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// ResetOutputBuffer discards any unwritten output data
func (p *nativePort) ResetOutputBuffer() error {
	if p.closed.Load() {
		return ErrLinkClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCOFLUSH)
}
