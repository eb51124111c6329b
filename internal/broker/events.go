package broker

import (
	"context"
	"fmt"

	"crm-service/internal/models"
)

// EventPublisher handles publishing CRM domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCustomerCreated publishes CustomerCreated event
func (ep *EventPublisher) PublishCustomerCreated(ctx context.Context, event *models.CustomerCreatedEvent) error {
	key := fmt.Sprintf("customer-%s", event.CustomerID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProductRestocked publishes ProductRestocked event
func (ep *EventPublisher) PublishProductRestocked(ctx context.Context, event *models.ProductRestockedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishJobRequested publishes a queued job dispatch. The attempt
// number rides in the event so the worker can enforce the retry
// budget without local state.
func (ep *EventPublisher) PublishJobRequested(ctx context.Context, event *models.JobRequestedEvent) error {
	key := fmt.Sprintf("job-%s", event.JobName)
	return ep.producer.PublishEvent(ctx, key, event)
}
