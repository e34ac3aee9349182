package part

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a part requirement, from the moment the
// estimate names it until it is installed on the vehicle.
type Status string

const (
	StatusNeeded      Status = "needed"
	StatusSourcing    Status = "sourcing"
	StatusOrdered     Status = "ordered"
	StatusShipped     Status = "shipped"
	StatusBackordered Status = "backordered"
	StatusReceived    Status = "received"
	StatusInstalled   Status = "installed"
	StatusReturned    Status = "returned"
	StatusCancelled   Status = "cancelled"
)

// allowedTransitions is the single source of truth for lifecycle legality.
// Cancelled and returned are reachable from every non-terminal state;
// installed, cancelled and returned are terminal.
var allowedTransitions = map[Status][]Status{
	StatusNeeded:      {StatusSourcing, StatusOrdered, StatusCancelled, StatusReturned},
	StatusSourcing:    {StatusNeeded, StatusOrdered, StatusCancelled, StatusReturned},
	StatusOrdered:     {StatusShipped, StatusBackordered, StatusCancelled, StatusReturned},
	StatusShipped:     {StatusReceived, StatusCancelled, StatusReturned},
	StatusBackordered: {StatusShipped, StatusReceived, StatusCancelled, StatusReturned},
	StatusReceived:    {StatusInstalled, StatusCancelled, StatusReturned},
	StatusInstalled:   {},
	StatusReturned:    {},
	StatusCancelled:   {},
}

func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := allowedTransitions[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return candidate, nil
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// NextStatuses returns the legal targets from s. The slice is a copy.
func NextStatuses(s Status) []Status {
	next, ok := allowedTransitions[s]
	if !ok {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to Status) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition validates a status change without performing it. Callers must
// check the returned error before mutating any stored status.
func Transition(from, to Status) error {
	if !from.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(from))
	}
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(to))
	}
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
