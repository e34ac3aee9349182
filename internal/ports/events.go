package ports

import (
	"context"

	"partsource/internal/domain/sourcing"
)

// EventPublisher fans domain events out to dashboards and notifications.
// Publishing is best-effort from the engine's point of view; failures are
// logged by adapters, never fail the sourcing flow.
type EventPublisher interface {
	Publish(ctx context.Context, event sourcing.Event) error
}
