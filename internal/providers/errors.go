package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable is returned when no upstream is configured.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMalformedResponse marks payloads that failed decode or validation.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrNotFound marks ids the upstream does not know.
	ErrNotFound = errors.New("not found")
)

// TransportError captures a failed call to the upstream data source.
type TransportError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsTransportError attempts to unwrap an error into a TransportError.
func AsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}
