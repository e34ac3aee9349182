package part

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStatus     = errors.New("unknown part status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidTransitionError reports an illegal lifecycle move. It matches
// ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
