package plugin

import (
	"errors"
	"fmt"

	"github.com/mackerelio/checkers"
)

// ConfigError is a caller mistake, ex.: malformed or inconsistent thresholds.
// It is reported before any network I/O and exits with ExitCodeUsage.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CollectionError is returned by collectors if the target could not be
// queried, ex.: timeouts, refused connections or SNMP errors.
type CollectionError struct {
	State checkers.Status
	Err   error
}

func (e *CollectionError) Error() string {
	return e.Err.Error()
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// Unreachable wraps connection level failures, they are critical.
func Unreachable(err error) error {
	return &CollectionError{State: checkers.CRITICAL, Err: err}
}

// ProtocolError wraps protocol level failures, they are unknown.
func ProtocolError(err error) error {
	return &CollectionError{State: checkers.UNKNOWN, Err: err}
}

// FormatError is returned when received data cannot be parsed.
type FormatError struct {
	State checkers.Status
	Err   error
}

func (e *FormatError) Error() string {
	return e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// FormatErrorf creates a FormatError with UNKNOWN state.
func FormatErrorf(format string, args ...interface{}) error {
	return &FormatError{State: checkers.UNKNOWN, Err: fmt.Errorf(format, args...)}
}

// ResultFromError converts any error into a check result.
// Errors without a known type are treated as UNKNOWN.
func ResultFromError(err error) *CheckResult {
	var (
		collectErr *CollectionError
		formatErr  *FormatError
		configErr  *ConfigError
	)
	switch {
	case errors.As(err, &collectErr):
		return NewResult(collectErr.State, "%s", err.Error())
	case errors.As(err, &formatErr):
		return NewResult(formatErr.State, "%s", err.Error())
	case errors.As(err, &configErr):
		return NewResult(checkers.UNKNOWN, "%s", err.Error())
	}

	return NewResult(checkers.UNKNOWN, "%s", err.Error())
}
