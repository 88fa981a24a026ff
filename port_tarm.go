package groundlink

import (
	"errors"
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// tarmPort adapts github.com/tarm/serial to Port. tarm has no separate
// input/output reset and no drain, so both resets flush both queues and Drain
// is a no-op.
type tarmPort struct {
	p *serial.Port
}

var _ Port = (*tarmPort)(nil)

func openTarm(name string, cfg ConnectionConfig) (Port, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        cfg.BaudRate,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: readTimeoutOrDefault(cfg.ReadTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return &tarmPort{p: p}, nil
}

// Read maps the io.EOF tarm reports on a read timeout to an empty read
func (t *tarmPort) Read(buf []byte) (int, error) {
	n, err := t.p.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (t *tarmPort) Write(data []byte) (int, error) {
	return t.p.Write(data)
}

func (t *tarmPort) Close() error {
	return t.p.Close()
}

func (t *tarmPort) Drain() error {
	return nil
}

func (t *tarmPort) ResetInputBuffer() error {
	return t.p.Flush()
}

func (t *tarmPort) ResetOutputBuffer() error {
	return t.p.Flush()
}
