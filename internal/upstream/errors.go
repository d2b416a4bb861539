package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrEmptyDocument is returned when the layout service answers successfully
// with a blank body. It is not an *Error.
var ErrEmptyDocument = errors.New("upstream: empty layout document")

// ErrorKind classifies an upstream failure.
type ErrorKind int

const (
	// KindTransport covers connection failures, timeouts and cancellation.
	KindTransport ErrorKind = iota
	// KindStatus is a non-2xx response.
	KindStatus
	// KindPayload is a 2xx response whose body cannot be decoded.
	KindPayload
)

func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindPayload:
		return "payload"
	default:
		return "transport"
	}
}

// Error is a failed upstream call.
type Error struct {
	Kind       ErrorKind
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: %s returned status %d", e.Op, e.URL, e.StatusCode)
	case KindPayload:
		return fmt.Sprintf("%s: invalid payload from %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: failed to call %s: %v", e.Op, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time.
func (e *Error) Timeout() bool {
	if e.Kind != KindTransport || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsTimeout reports whether err is an upstream timeout.
func IsTimeout(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Timeout()
}

// IsPayload reports whether err is an undecodable upstream response.
func IsPayload(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == KindPayload
}
