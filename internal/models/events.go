package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCustomerCreated  = "CUSTOMER_CREATED"
	EventTypeOrderCreated     = "ORDER_CREATED"
	EventTypeProductRestocked = "PRODUCT_RESTOCKED"
	EventTypeJobRequested     = "JOB_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CustomerCreatedEvent published when a customer is created
type CustomerCreatedEvent struct {
	BaseEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ProductIDs  []uuid.UUID     `json:"product_ids"`
}

// ProductRestockedEvent published when the replenisher bumps stock
type ProductRestockedEvent struct {
	BaseEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	NewStock  int       `json:"new_stock"`
}

// JobRequestedEvent dispatches a queued job run to the worker. Attempt
// starts at 1 and is carried in the message so retry accounting is
// data, not consumer state.
type JobRequestedEvent struct {
	BaseEvent
	JobName string `json:"job_name"`
	Attempt int    `json:"attempt"`
}
