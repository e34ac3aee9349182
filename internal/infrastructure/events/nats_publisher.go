package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/ports"
)

// NATSPublisher serializes domain events to JSON and publishes them on the
// event's subject.
type NATSPublisher struct {
	conn *nats.Conn
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Connect dials the broker with the client name attached so connections show
// up identifiably in monitoring.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("partsource"))
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", url)
	}
	return conn, nil
}

func (p *NATSPublisher) Publish(_ context.Context, event sourcing.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}
	if err := p.conn.Publish(event.Subject(), payload); err != nil {
		return errs.Wrapf(err, "publish %s", event.Subject())
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
