package poller

import "errors"

var (
	// ErrNoWorld is returned when enabling without a watched world.
	ErrNoWorld = errors.New("no world selected")
	// ErrInvalidInterval is returned for a non-positive poll interval.
	ErrInvalidInterval = errors.New("poll interval must be positive")
	// ErrWorldNotInMatchup is recorded when the watched world is in no current matchup.
	ErrWorldNotInMatchup = errors.New("world is not part of any current matchup")
)

// ConfigError reports a configuration the poller refuses to run with.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
