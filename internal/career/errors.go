package career

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks required input missing before any request is issued.
	ErrValidation = errors.New("validation failed")
	// ErrPrecondition marks a state machine invariant violation. No state is mutated.
	ErrPrecondition = errors.New("precondition failed")
	// ErrTransport marks a network or HTTP failure.
	ErrTransport = errors.New("transport failed")

	ErrNoQuestions    = errors.New("no interview questions received")
	ErrPartialFailure = errors.New("partial failure")

	ErrBusy  = fmt.Errorf("%w: another operation is in flight", ErrPrecondition)
	ErrStale = fmt.Errorf("%w: response discarded after reset", ErrPrecondition)
	// ErrUnauthenticated is returned when an authenticated call is attempted without a usable token.
	ErrUnauthenticated = fmt.Errorf("%w: not logged in", ErrPrecondition)
)

// Validationf returns an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Preconditionf returns an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// TransportError describes a failed remote call.
type TransportError struct {
	Op         string
	StatusCode int
	// Detail is the server supplied explanation, if any.
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	msg := e.Op
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: bad status %d", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
