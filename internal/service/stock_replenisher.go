package service

import (
	"context"
	"fmt"
	"time"

	"crm-service/internal/models"
	"crm-service/internal/util"
	"crm-service/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LowStockFloor is the stock level below which the replenisher applies
// a bump. The rule is bump-once-per-invocation, not restock-to-
// threshold: a product still under the floor after a bump gets bumped
// again on the next invocation. Callers needing idempotency must
// de-duplicate invocations externally.
const LowStockFloor = 10

// DefaultRestockAmount is the bump applied when a caller does not
// specify one.
const DefaultRestockAmount = 10

// StockReplenisher raises product stock when a low-stock condition is
// detected, either for one name-targeted product or as a catalog-wide
// scan. It is the only sanctioned write path for stock besides manual
// product updates.
type StockReplenisher struct {
	store  RecordStore
	events EventPublisher
	logger *zap.Logger
}

// NewStockReplenisher creates a new stock replenisher
func NewStockReplenisher(store RecordStore, events EventPublisher) *StockReplenisher {
	return &StockReplenisher{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// UpdateProductInput represents a name-targeted product update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name          *string          `json:"name,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	RestockAmount int              `json:"restock_amount,omitempty"`
}

// ReplenishResult is the outcome of a replenish operation
type ReplenishResult struct {
	UpdatedProducts []models.Product `json:"updated_products"`
	Message         string           `json:"message"`
}

// UpdateProduct applies the requested field updates to the product
// with the given name, then applies the floor rule: when the resulting
// stock is under LowStockFloor, it is bumped by the restock amount.
// Other field updates apply regardless of whether a bump happens.
func (r *StockReplenisher) UpdateProduct(ctx context.Context, name string, input *UpdateProductInput) (*models.Product, string, error) {
	ctx, span := util.StartSpan(ctx, "StockReplenisher.UpdateProduct")
	defer span.End()

	product, err := r.store.GetProductByName(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrProductNotFound, name)
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		if !validation.ValidPrice(*input.Price) {
			return nil, "", fmt.Errorf("%w: %s", ErrInvalidPrice, *input.Price)
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if !validation.ValidStock(*input.Stock) {
			return nil, "", fmt.Errorf("%w: %d", ErrInvalidStock, *input.Stock)
		}
		product.Stock = *input.Stock
	}

	restock := input.RestockAmount
	if restock <= 0 {
		restock = DefaultRestockAmount
	}

	bumped := false
	if product.Stock < LowStockFloor {
		product.Stock += restock
		bumped = true
	}

	if err := r.store.UpdateProduct(ctx, product); err != nil {
		return nil, "", fmt.Errorf("failed to update product: %w", err)
	}

	if bumped {
		util.ProductsRestockedTotal.Inc()
		r.publishRestocked(ctx, product)
	}

	message := fmt.Sprintf("Product updated (stock bumped if below %d).", LowStockFloor)
	r.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock", product.Stock),
		zap.Bool("bumped", bumped))

	return product, message, nil
}

// ReplenishLowStock scans the catalog and bumps every product with
// stock under LowStockFloor by restockAmount. The scan and the bumps
// run as one statement at the storage layer.
func (r *StockReplenisher) ReplenishLowStock(ctx context.Context, restockAmount int) (*ReplenishResult, error) {
	ctx, span := util.StartSpan(ctx, "StockReplenisher.ReplenishLowStock")
	defer span.End()

	if restockAmount <= 0 {
		restockAmount = DefaultRestockAmount
	}

	updated, err := r.store.RestockProductsBelow(ctx, LowStockFloor, restockAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to restock products: %w", err)
	}

	for i := range updated {
		util.ProductsRestockedTotal.Inc()
		r.publishRestocked(ctx, &updated[i])
	}

	message := fmt.Sprintf("Restocked %d low-stock products", len(updated))
	if len(updated) == 0 {
		message = "No products below stock floor"
	}

	r.logger.Info("Low-stock replenish completed",
		zap.Int("updated", len(updated)),
		zap.Int("restock_amount", restockAmount))

	return &ReplenishResult{UpdatedProducts: updated, Message: message}, nil
}

func (r *StockReplenisher) publishRestocked(ctx context.Context, product *models.Product) {
	if r.events == nil {
		return
	}
	event := &models.ProductRestockedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductRestocked,
			Timestamp: time.Now(),
		},
		ProductID: product.ID,
		Name:      product.Name,
		NewStock:  product.Stock,
	}
	if err := r.events.PublishProductRestocked(ctx, event); err != nil {
		r.logger.Error("Failed to publish ProductRestocked event", zap.Error(err))
	}
}
