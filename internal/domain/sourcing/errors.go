package sourcing

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownState       = errors.New("unknown sourcing state")
	ErrInvalidStateChange = errors.New("invalid sourcing state change")
	// ErrAlreadyFinalized rejects operations on a closed request.
	ErrAlreadyFinalized = errors.New("sourcing request already finalized")
	// ErrSequenceConflict reports a PO numbering race; retried once with a
	// fresh sequence read before it surfaces.
	ErrSequenceConflict = errors.New("po sequence conflict")
)

type InvalidStateChangeError struct {
	From State
	To   State
}

func (e *InvalidStateChangeError) Error() string {
	return fmt.Sprintf("invalid sourcing state change from %q to %q", e.From, e.To)
}

func (e *InvalidStateChangeError) Unwrap() error {
	return ErrInvalidStateChange
}
