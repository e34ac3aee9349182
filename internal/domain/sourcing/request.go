package sourcing

import (
	"fmt"
	"time"
)

// State is the lifecycle of one sourcing request.
type State string

const (
	StateOpen             State = "open"
	StateAggregating      State = "aggregating"
	StateSelecting        State = "selecting"
	StateOrdered          State = "ordered"
	StatePartiallyOrdered State = "partially_ordered"
	StateFailed           State = "failed"
	StateCancelled        State = "cancelled"
)

var stateTransitions = map[State][]State{
	StateOpen:             {StateAggregating, StateCancelled},
	StateAggregating:      {StateSelecting, StateCancelled},
	StateSelecting:        {StateOrdered, StatePartiallyOrdered, StateFailed, StateCancelled},
	StateOrdered:          {},
	StatePartiallyOrdered: {},
	StateFailed:           {},
	StateCancelled:        {},
}

func (s State) Valid() bool {
	_, ok := stateTransitions[s]
	return ok
}

// Terminal states close the request; once reached nothing moves again.
func (s State) Terminal() bool {
	next, ok := stateTransitions[s]
	return ok && len(next) == 0
}

// TransitionState validates a request state change. Attempts to move a
// closed request report ErrAlreadyFinalized.
func TransitionState(from, to State) error {
	if !from.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownState, string(from))
	}
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownState, string(to))
	}
	if from.Terminal() {
		return fmt.Errorf("%w: request is %s", ErrAlreadyFinalized, from)
	}
	for _, candidate := range stateTransitions[from] {
		if candidate == to {
			return nil
		}
	}
	return &InvalidStateChangeError{From: from, To: to}
}

// Request is the unit of sourcing work: one repair order's requirements
// collected under a shared aggregation deadline.
type Request struct {
	RequestID      string
	RepairOrderID  string
	RequirementIDs []string
	State          State
	Deadline       time.Time
	CreatedAt      time.Time
	ClosedAt       *time.Time
}

// Outcome is the per-request summary handed to persistence and UI
// collaborators once a request resolves.
type Outcome struct {
	RequestID      string   `json:"requestId"`
	State          State    `json:"state"`
	Ordered        []string `json:"ordered"`
	Unsourced      []string `json:"unsourced"`
	PurchaseOrders []string `json:"purchaseOrders"`
}
