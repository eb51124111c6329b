package service

import (
	"context"
	"fmt"
	"testing"

	"crm-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	customer, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "+123456789",
	})
	require.NoError(t, err)
	require.NotNil(t, customer)

	assert.NotEqual(t, uuid.Nil, customer.ID)
	assert.Equal(t, "alice@example.com", customer.Email)
	assert.True(t, customer.IsActive)

	stored, err := store.GetCustomerByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Email, stored.Email)
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	_, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name: "Alice", Email: "alice@example.com",
	})
	require.NoError(t, err)

	customer, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name: "Another Alice", Email: "alice@example.com",
	})
	assert.Nil(t, customer)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Store count unchanged.
	assert.Len(t, store.customers, 1)
}

func TestCreateCustomerInvalidPhone(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)

	customer, err := engine.CreateCustomer(context.Background(), &CreateCustomerInput{
		Name: "Bob", Email: "bob@example.com", Phone: "not-a-phone",
	})
	assert.Nil(t, customer)
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Empty(t, store.customers)
}

func TestCreateCustomersBulkPartialFailure(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	// Positions 2 and 5 duplicate emails of earlier items; the rest
	// are valid.
	inputs := []*CreateCustomerInput{
		{Name: "C0", Email: "c0@example.com"},
		{Name: "C1", Email: "c1@example.com"},
		{Name: "C2", Email: "c0@example.com"},
		{Name: "C3", Email: "c3@example.com"},
		{Name: "C4", Email: "c4@example.com"},
		{Name: "C5", Email: "c1@example.com"},
		{Name: "C6", Email: "c6@example.com"},
	}

	result, err := engine.CreateCustomersBulk(ctx, inputs)
	require.NoError(t, err)

	assert.Len(t, result.Created, len(inputs)-2)
	assert.Len(t, result.Errors, 2)

	// Successes preserve relative input order.
	wantEmails := []string{"c0@example.com", "c1@example.com", "c3@example.com", "c4@example.com", "c6@example.com"}
	for i, customer := range result.Created {
		assert.Equal(t, wantEmails[i], customer.Email)
	}

	// Errors preserve relative input order too.
	assert.Contains(t, result.Errors[0], "c0@example.com")
	assert.Contains(t, result.Errors[1], "c1@example.com")

	// Successful siblings are committed despite the failures.
	assert.Len(t, store.customers, len(inputs)-2)
}

func TestCreateCustomersBulkMixedValidation(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)

	inputs := []*CreateCustomerInput{
		{Name: "OK", Email: "ok@example.com"},
		{Name: "Bad phone", Email: "badphone@example.com", Phone: "12345"},
		{Name: "Bad email", Email: "not-an-email"},
	}

	result, err := engine.CreateCustomersBulk(context.Background(), inputs)
	require.NoError(t, err)

	assert.Len(t, result.Created, 1)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "phone")
	assert.Contains(t, result.Errors[1], "email")
}

func TestCreateProduct(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	product, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name:  "Coffee Machine",
		Price: decimal.NewFromFloat(799.99),
		Stock: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, "SKU-1", product.SKU)
	assert.Equal(t, "coffee-machine-1", product.Slug)
	assert.Equal(t, models.DefaultLowStockThreshold, product.LowStockThreshold)
	assert.True(t, product.TrackInventory)
}

func TestCreateProductValidation(t *testing.T) {
	engine := NewMutationEngine(newMemStore(), nil)
	ctx := context.Background()

	_, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Free", Price: decimal.Zero, Stock: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Negative", Price: decimal.NewFromInt(10), Stock: -1,
	})
	assert.ErrorIs(t, err, ErrInvalidStock)
}

func TestCreateOrderTotals(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	customer, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name: "Carol", Email: "carol@example.com",
	})
	require.NoError(t, err)

	p1, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "P1", Price: decimal.RequireFromString("10.00"), Stock: 5,
	})
	require.NoError(t, err)
	p2, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "P2", Price: decimal.RequireFromString("15.00"), Stock: 5,
	})
	require.NoError(t, err)

	order, err := engine.CreateOrder(ctx, &CreateOrderInput{
		CustomerID: customer.ID,
		ProductIDs: []uuid.UUID{p1.ID, p2.ID},
	})
	require.NoError(t, err)

	want := decimal.RequireFromString("25.00")
	assert.True(t, order.Subtotal.Equal(want), "subtotal = %s", order.Subtotal)
	assert.True(t, order.TotalAmount.Equal(want), "total = %s", order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "ORD-1", order.OrderNumber)
}

func TestCreateOrderFiltersUnknownProducts(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	customer, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name: "Dave", Email: "dave@example.com",
	})
	require.NoError(t, err)

	p1, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Known", Price: decimal.NewFromInt(20), Stock: 1,
	})
	require.NoError(t, err)

	order, err := engine.CreateOrder(ctx, &CreateOrderInput{
		CustomerID: customer.ID,
		ProductIDs: []uuid.UUID{p1.ID, uuid.New()},
	})
	require.NoError(t, err)

	// Unknown id is filtered; the total reflects the resolved set only.
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(20)))
	assert.Len(t, store.orderProducts[order.ID], 1)
}

func TestCreateOrderNoValidProducts(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	ctx := context.Background()

	customer, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name: "Eve", Email: "eve@example.com",
	})
	require.NoError(t, err)

	order, err := engine.CreateOrder(ctx, &CreateOrderInput{
		CustomerID: customer.ID,
		ProductIDs: []uuid.UUID{uuid.New(), uuid.New()},
	})
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrNoValidProducts)
	assert.Empty(t, store.orders)
}

func TestCreateOrderCustomerNotFound(t *testing.T) {
	engine := NewMutationEngine(newMemStore(), nil)

	order, err := engine.CreateOrder(context.Background(), &CreateOrderInput{
		CustomerID: uuid.New(),
		ProductIDs: []uuid.UUID{uuid.New()},
	})
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	replenisher := NewStockReplenisher(store, nil)
	ctx := context.Background()

	customer, err := engine.CreateCustomer(ctx, &CreateCustomerInput{
		Name: "Frank", Email: "frank@example.com",
	})
	require.NoError(t, err)

	product, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Widget", Price: decimal.RequireFromString("30.00"), Stock: 50,
	})
	require.NoError(t, err)

	order, err := engine.CreateOrder(ctx, &CreateOrderInput{
		CustomerID: customer.ID,
		ProductIDs: []uuid.UUID{product.ID},
	})
	require.NoError(t, err)

	// Raise the price after the fact; the order keeps its snapshot.
	newPrice := decimal.RequireFromString("99.00")
	_, _, err = replenisher.UpdateProduct(ctx, "Widget", &UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	stored := store.orders[order.ID]
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("30.00")),
		fmt.Sprintf("total = %s", stored.TotalAmount))
}
