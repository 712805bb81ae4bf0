package services

import "log"

// Routing keys of the domain events the services emit after commit.
const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderDeleted   = "order.deleted"
	EventAccountDeleted = "account.deleted"
)

// EventPublisher delivers domain events to other systems.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// publish sends an event if a publisher is configured. A failed publish is
// logged and never fails the caller's request.
func publish(p EventPublisher, routingKey string, payload map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
