package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crm-service/internal/models"
	"crm-service/internal/util"
	"crm-service/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MutationEngine executes the logical writes of the CRM: customer,
// product and order creation, plus the bulk customer path. Each
// operation validates first and commits exactly one durable write on
// success; every failure path leaves the store untouched.
type MutationEngine struct {
	store  RecordStore
	events EventPublisher
	logger *zap.Logger
}

// NewMutationEngine creates a new mutation engine
func NewMutationEngine(store RecordStore, events EventPublisher) *MutationEngine {
	return &MutationEngine{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreateCustomerInput represents a request to create a customer
type CreateCustomerInput struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Phone         string `json:"phone,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

// CreateProductInput represents a request to create a product
type CreateProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// CreateOrderInput represents a request to create an order
type CreateOrderInput struct {
	CustomerID uuid.UUID   `json:"customer_id" binding:"required"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1"`
	OrderDate  *time.Time  `json:"order_date,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// CreateCustomer validates and creates a single customer. The email
// uniqueness check precedes any write: a duplicate fails fast with no
// partial state.
func (e *MutationEngine) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "MutationEngine.CreateCustomer")
	defer span.End()

	if err := validateCustomerInput(input); err != nil {
		util.CustomersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	exists, err := e.store.CustomerEmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		util.CustomersFailedTotal.WithLabelValues("duplicate_email").Inc()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, input.Email)
	}

	customer := newCustomer(input)
	if err := e.store.CreateCustomer(ctx, customer); err != nil {
		util.CustomersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	util.CustomersCreatedTotal.Inc()
	e.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("email", customer.Email))

	e.publishCustomerCreated(ctx, customer)
	return customer, nil
}

// CreateCustomersBulk runs the batch customer mutation. Items are
// processed in input order; every item lands in exactly one of the
// result's Created or Errors lists and a failing item never aborts its
// siblings. The storage layer batches the writes in one transaction
// with per-item rollback, so successes are durable even when siblings
// fail.
func (e *MutationEngine) CreateCustomersBulk(ctx context.Context, inputs []*CreateCustomerInput) (*models.BatchResult, error) {
	ctx, span := util.StartSpan(ctx, "MutationEngine.CreateCustomersBulk")
	defer span.End()

	result := &models.BatchResult{
		Created: make([]*models.Customer, 0, len(inputs)),
		Errors:  make([]string, 0),
	}

	// Format-level validation happens up front; only format-valid
	// items reach the store. itemErrs carries the pre-write failures
	// positionally so the final merge preserves input order.
	itemErrs := make([]error, len(inputs))
	candidates := make([]*models.Customer, 0, len(inputs))
	candidateIdx := make([]int, 0, len(inputs))

	for i, input := range inputs {
		if err := validateCustomerInput(input); err != nil {
			itemErrs[i] = err
			continue
		}
		candidates = append(candidates, newCustomer(input))
		candidateIdx = append(candidateIdx, i)
	}

	batchErrs, err := e.store.CreateCustomersBatch(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("batch write failed: %w", err)
	}
	for j, idx := range candidateIdx {
		itemErrs[idx] = batchErrs[j]
	}

	created := make(map[int]*models.Customer, len(candidates))
	for j, idx := range candidateIdx {
		if batchErrs[j] == nil {
			created[idx] = candidates[j]
		}
	}

	for i := range inputs {
		if itemErrs[i] != nil {
			util.BatchItemsFailedTotal.Inc()
			result.Errors = append(result.Errors, itemErrs[i].Error())
			continue
		}
		customer := created[i]
		util.CustomersCreatedTotal.Inc()
		result.Created = append(result.Created, customer)
		e.publishCustomerCreated(ctx, customer)
	}

	e.logger.Info("Bulk customer creation completed",
		zap.Int("requested", len(inputs)),
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Errors)))

	return result, nil
}

// CreateProduct validates and creates a single product. SKU and slug
// are generated from the current catalog size, matching the numbering
// of existing records.
func (e *MutationEngine) CreateProduct(ctx context.Context, input *CreateProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "MutationEngine.CreateProduct")
	defer span.End()

	if !validation.ValidPrice(input.Price) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, input.Price)
	}
	if !validation.ValidStock(input.Stock) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStock, input.Stock)
	}

	seq, err := e.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	product := &models.Product{
		ID:                uuid.New(),
		Name:              input.Name,
		Slug:              fmt.Sprintf("%s-%d", slugify(input.Name), seq+1),
		SKU:               fmt.Sprintf("SKU-%d", seq+1),
		Description:       input.Description,
		Price:             input.Price,
		Stock:             input.Stock,
		LowStockThreshold: models.DefaultLowStockThreshold,
		TrackInventory:    true,
		Category:          input.Category,
		IsActive:          true,
	}

	if err := e.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	e.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	return product, nil
}

// CreateOrder resolves the customer, filters the requested product ids
// to those that exist, and creates the order with monetary totals
// snapshotted from the resolved products' current prices. An empty
// resolved set fails the whole operation; no order is created.
func (e *MutationEngine) CreateOrder(ctx context.Context, input *CreateOrderInput) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "MutationEngine.CreateOrder")
	defer span.End()

	customer, err := e.store.GetCustomerByID(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}
	if customer == nil {
		util.OrdersFailedTotal.WithLabelValues("customer_not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, input.CustomerID)
	}

	products, err := e.store.GetProductsByIDs(ctx, input.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	if len(products) == 0 {
		util.OrdersFailedTotal.WithLabelValues("no_valid_products").Inc()
		return nil, ErrNoValidProducts
	}

	subtotal := decimal.Zero
	productIDs := make([]uuid.UUID, len(products))
	for i, product := range products {
		subtotal = subtotal.Add(product.Price)
		productIDs[i] = product.ID
	}

	seq, err := e.store.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	orderDate := time.Now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    fmt.Sprintf("ORD-%d", seq+1),
		CustomerID:     customer.ID,
		Status:         models.OrderStatusPending,
		Subtotal:       subtotal,
		TaxAmount:      decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    subtotal,
		Notes:          input.Notes,
		OrderDate:      orderDate,
	}

	if err := e.store.CreateOrder(ctx, order, productIDs); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	e.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_amount", order.TotalAmount.String()))

	if e.events != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCreated,
				Timestamp: time.Now(),
			},
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			TotalAmount: order.TotalAmount,
			ProductIDs:  productIDs,
		}
		if err := e.events.PublishOrderCreated(ctx, event); err != nil {
			e.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return order, nil
}

func (e *MutationEngine) publishCustomerCreated(ctx context.Context, customer *models.Customer) {
	if e.events == nil {
		return
	}
	event := &models.CustomerCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCustomerCreated,
			Timestamp: time.Now(),
		},
		CustomerID: customer.ID,
		Email:      customer.Email,
	}
	if err := e.events.PublishCustomerCreated(ctx, event); err != nil {
		e.logger.Error("Failed to publish CustomerCreated event", zap.Error(err))
	}
}

func validateCustomerInput(input *CreateCustomerInput) error {
	if !validation.ValidEmail(input.Email) {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, input.Email)
	}
	if !validation.ValidPhone(input.Phone) {
		return fmt.Errorf("%w: %s", ErrInvalidPhone, input.Phone)
	}
	return nil
}

func newCustomer(input *CreateCustomerInput) *models.Customer {
	return &models.Customer{
		ID:            uuid.New(),
		Email:         input.Email,
		Name:          input.Name,
		Phone:         input.Phone,
		StreetAddress: input.StreetAddress,
		City:          input.City,
		State:         input.State,
		PostalCode:    input.PostalCode,
		Country:       input.Country,
		IsActive:      true,
	}
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
