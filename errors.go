package groundlink

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrNoPortFound       = errors.New("no serial port available")
	ErrLinkClosed        = errors.New("serial link is closed")
	ErrWriteTimeout      = errors.New("write operation timed out")
	ErrInvalidConfig     = errors.New("invalid link configuration")
	ErrInvalidBaudRate   = errors.New("invalid baud rate")
	ErrUnknownDriver     = errors.New("unknown serial driver")
	ErrDriverUnavailable = errors.New("serial driver not available on this platform")
	ErrDeviceNotFound    = errors.New("serial device not found")

	// Mission errors
	ErrNoWaypoints     = errors.New("waypoint list is empty")
	ErrWaypointIndex   = errors.New("waypoint index out of range")
	ErrInvalidWaypoint = errors.New("invalid waypoint")
)

// ErrorKind classifies failures crossing the link boundary.
type ErrorKind int

const (
	KindConnection ErrorKind = iota // port missing, open failure
	KindIO                          // transient read/write failure
	KindValidation                  // bad waypoint or command input
	KindObserver                    // observer callback failed
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindIO:
		return "io"
	case KindValidation:
		return "validation"
	case KindObserver:
		return "observer"
	default:
		return "unknown"
	}
}

// LinkError carries the operation and port a failure happened on.
type LinkError struct {
	Kind ErrorKind
	Op   string
	Port string
	Err  error
}

func (e *LinkError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Kind, e.Op, e.Port, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// Retryable reports whether calling the operation again may succeed without
// changing configuration.
func (e *LinkError) Retryable() bool {
	if errors.Is(e.Err, ErrInvalidConfig) || errors.Is(e.Err, ErrUnknownDriver) ||
		errors.Is(e.Err, ErrDriverUnavailable) || errors.Is(e.Err, ErrInvalidBaudRate) {
		return false
	}
	return e.Kind == KindIO || e.Kind == KindConnection
}

// IsRetryable reports whether err is a LinkError worth retrying.
func IsRetryable(err error) bool {
	var le *LinkError
	if errors.As(err, &le) {
		return le.Retryable()
	}
	return false
}
