package groundlink

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockPort is an in-memory Port. Writes can be made byte-by-byte with a
// yield between bytes so unserialized writers would interleave.
type mockPort struct {
	mu       sync.Mutex
	out      bytes.Buffer
	closed   bool
	inResets int
	outReset int
	drains   int

	slowWrite bool
	block     chan struct{} // when set, Write waits for it to close
	writeErr  error

	reads chan []byte
	done  chan struct{} // closed by Close
}

func newMockPort() *mockPort {
	return &mockPort{reads: make(chan []byte, 64), done: make(chan struct{})}
}

func (m *mockPort) Write(data []byte) (int, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-m.done:
			return 0, ErrLinkClosed
		}
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	if !m.slowWrite {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return 0, ErrLinkClosed
		}
		return m.out.Write(data)
	}

	for _, b := range data {
		m.mu.Lock()
		m.out.WriteByte(b)
		m.mu.Unlock()
		runtime.Gosched()
	}
	return len(data), nil
}

func (m *mockPort) Read(buf []byte) (int, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, ErrLinkClosed
	}

	select {
	case chunk := <-m.reads:
		return copy(buf, chunk), nil
	case <-time.After(10 * time.Millisecond):
		return 0, nil
	}
}

func (m *mockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrLinkClosed
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *mockPort) Drain() error {
	m.mu.Lock()
	m.drains++
	m.mu.Unlock()
	return nil
}

func (m *mockPort) ResetInputBuffer() error {
	m.mu.Lock()
	m.inResets++
	m.mu.Unlock()
	return nil
}

func (m *mockPort) ResetOutputBuffer() error {
	m.mu.Lock()
	m.outReset++
	m.mu.Unlock()
	return nil
}

// Written returns everything written so far
func (m *mockPort) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.String()
}

// Lines returns the written lines without their newlines
func (m *mockPort) Lines() []string {
	s := strings.TrimSuffix(m.Written(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (m *mockPort) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func mockOpener(p *mockPort) Opener {
	return func(string, ConnectionConfig) (Port, error) {
		return p, nil
	}
}

func TestOpenerFor(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{DriverBugst, false},
		{DriverTarm, false},
		{DriverNative, false},
		{"pyserial", true},
	}

	for _, tt := range tests {
		open, err := openerFor(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("openerFor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownDriver) {
			t.Errorf("openerFor(%q) error = %v, want ErrUnknownDriver", tt.name, err)
		}
		if !tt.wantErr && open == nil {
			t.Errorf("openerFor(%q) returned nil opener", tt.name)
		}
	}
}

func TestReadTimeoutOrDefault(t *testing.T) {
	if got := readTimeoutOrDefault(0); got != 200*time.Millisecond {
		t.Errorf("readTimeoutOrDefault(0) = %v, want 200ms", got)
	}
	if got := readTimeoutOrDefault(time.Second); got != time.Second {
		t.Errorf("readTimeoutOrDefault(1s) = %v, want 1s", got)
	}
}
