package events

import (
	"context"
	"sync"

	"partsource/internal/domain/sourcing"
	"partsource/internal/ports"
)

// MemoryPublisher buffers events in memory. It backs offline CLI runs and
// tests where no broker is configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []sourcing.Event
}

var _ ports.EventPublisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event sourcing.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []sourcing.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sourcing.Event, len(p.events))
	copy(out, p.events)
	return out
}
