package part

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" Ordered ")
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if got != StatusOrdered {
		t.Fatalf("ParseStatus() = %q", got)
	}

	_, err = ParseStatus("pending")
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("ParseStatus() error = %v, want ErrUnknownStatus", err)
	}
}

func TestTransitionLegality(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"needed to sourcing", StatusNeeded, StatusSourcing, true},
		{"needed to ordered", StatusNeeded, StatusOrdered, true},
		{"sourcing to ordered", StatusSourcing, StatusOrdered, true},
		{"sourcing back to needed", StatusSourcing, StatusNeeded, true},
		{"ordered to shipped", StatusOrdered, StatusShipped, true},
		{"ordered to backordered", StatusOrdered, StatusBackordered, true},
		{"backordered to shipped", StatusBackordered, StatusShipped, true},
		{"shipped to received", StatusShipped, StatusReceived, true},
		{"received to installed", StatusReceived, StatusInstalled, true},
		{"shipped to cancelled", StatusShipped, StatusCancelled, true},
		{"received to returned", StatusReceived, StatusReturned, true},
		{"needed to received", StatusNeeded, StatusReceived, false},
		{"ordered to installed", StatusOrdered, StatusInstalled, false},
		{"installed to sourcing", StatusInstalled, StatusSourcing, false},
		{"cancelled to needed", StatusCancelled, StatusNeeded, false},
		{"returned to ordered", StatusReturned, StatusOrdered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.ok {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.ok)
			}

			err := Transition(tt.from, tt.to)
			if tt.ok && err != nil {
				t.Fatalf("Transition(%q, %q) error = %v", tt.from, tt.to, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Transition(%q, %q) error = %v, want ErrInvalidTransition", tt.from, tt.to, err)
			}
		})
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	for _, s := range []Status{StatusInstalled, StatusCancelled, StatusReturned} {
		if !s.Terminal() {
			t.Fatalf("%q should be terminal", s)
		}
		if next := NextStatuses(s); len(next) != 0 {
			t.Fatalf("NextStatuses(%q) = %v, want empty", s, next)
		}
	}
}

func TestInvalidTransitionErrorFields(t *testing.T) {
	err := Transition(StatusInstalled, StatusSourcing)

	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("Transition() error = %T, want *InvalidTransitionError", err)
	}
	if ite.From != StatusInstalled || ite.To != StatusSourcing {
		t.Fatalf("InvalidTransitionError = %+v", ite)
	}
}
