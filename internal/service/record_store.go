package service

import (
	"context"

	"crm-service/internal/models"

	"github.com/google/uuid"
)

// RecordStore is the transactional store the mutation engine writes
// through. Every write to customer/product/order records goes through
// these methods; nothing bypasses them. *store.Store implements it.
type RecordStore interface {
	CustomerEmailExists(ctx context.Context, email string) (bool, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	// CreateCustomersBatch writes candidates in one transaction with
	// per-item rollback. The returned slice is aligned with the input;
	// nil entries mark created candidates.
	CreateCustomersBatch(ctx context.Context, candidates []*models.Customer) ([]error, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)

	CountProducts(ctx context.Context) (int, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	RestockProductsBelow(ctx context.Context, floor, amount int) ([]models.Product, error)

	CountOrders(ctx context.Context) (int, error)
	CreateOrder(ctx context.Context, order *models.Order, productIDs []uuid.UUID) error
}

// EventPublisher publishes domain events after successful mutations.
// *broker.EventPublisher implements it. Publishing is best effort: a
// publish failure is logged, never surfaced to the mutation caller.
type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event *models.CustomerCreatedEvent) error
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishProductRestocked(ctx context.Context, event *models.ProductRestockedEvent) error
}
