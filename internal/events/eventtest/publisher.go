// Package eventtest provides a recording publisher for tests in other
// packages. It is never imported by production code.
package eventtest

import (
	"context"

	"github.com/shopsphere/shopsphere-backend/internal/events"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// Publisher records published events in order.
type Publisher struct {
	Events []*events.OrderEvent
}

var _ events.OrderEventPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{Events: make([]*events.OrderEvent, 0)}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.Events = append(p.Events, &events.OrderEvent{Type: events.EventTypeOrderCreated, OrderID: order.ID})
	return nil
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	p.Events = append(p.Events, &events.OrderEvent{Type: events.EventTypeOrderStatusChanged, OrderID: order.ID})
	return nil
}

func (p *Publisher) Close() error { return nil }
