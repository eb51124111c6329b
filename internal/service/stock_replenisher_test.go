package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProductBumpsUnderFloor(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	replenisher := NewStockReplenisher(store, nil)
	ctx := context.Background()

	_, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Beans", Price: decimal.NewFromInt(12), Stock: 3,
	})
	require.NoError(t, err)

	// First invocation: 3 < 10, bump by 10.
	product, _, err := replenisher.UpdateProduct(ctx, "Beans", &UpdateProductInput{RestockAmount: 10})
	require.NoError(t, err)
	assert.Equal(t, 13, product.Stock)

	// Second invocation: 13 >= 10, no bump.
	product, _, err = replenisher.UpdateProduct(ctx, "Beans", &UpdateProductInput{RestockAmount: 10})
	require.NoError(t, err)
	assert.Equal(t, 13, product.Stock)
}

func TestUpdateProductBumpsTwiceWhileStillUnderFloor(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	replenisher := NewStockReplenisher(store, nil)
	ctx := context.Background()

	_, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Filters", Price: decimal.NewFromInt(5), Stock: 1,
	})
	require.NoError(t, err)

	// Bump is unconditional once per invocation while under the
	// floor, not restock-to-threshold.
	product, _, err := replenisher.UpdateProduct(ctx, "Filters", &UpdateProductInput{RestockAmount: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, product.Stock)

	product, _, err = replenisher.UpdateProduct(ctx, "Filters", &UpdateProductInput{RestockAmount: 4})
	require.NoError(t, err)
	assert.Equal(t, 9, product.Stock)
}

func TestUpdateProductAppliesFieldsWithoutBump(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	replenisher := NewStockReplenisher(store, nil)
	ctx := context.Background()

	_, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Grinder", Price: decimal.NewFromInt(80), Stock: 25,
	})
	require.NoError(t, err)

	newName := "Burr Grinder"
	newPrice := decimal.NewFromInt(95)
	product, _, err := replenisher.UpdateProduct(ctx, "Grinder", &UpdateProductInput{
		Name:  &newName,
		Price: &newPrice,
	})
	require.NoError(t, err)

	// Stock at or above the floor stays unchanged; other field
	// updates still apply.
	assert.Equal(t, 25, product.Stock)
	assert.Equal(t, "Burr Grinder", product.Name)
	assert.True(t, product.Price.Equal(newPrice))
}

func TestUpdateProductNotFound(t *testing.T) {
	replenisher := NewStockReplenisher(newMemStore(), nil)

	product, _, err := replenisher.UpdateProduct(context.Background(), "Ghost", &UpdateProductInput{})
	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReplenishLowStockScan(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	replenisher := NewStockReplenisher(store, nil)
	ctx := context.Background()

	_, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Low", Price: decimal.NewFromInt(1), Stock: 2,
	})
	require.NoError(t, err)
	_, err = engine.CreateProduct(ctx, &CreateProductInput{
		Name: "High", Price: decimal.NewFromInt(1), Stock: 40,
	})
	require.NoError(t, err)

	result, err := replenisher.ReplenishLowStock(ctx, 10)
	require.NoError(t, err)

	require.Len(t, result.UpdatedProducts, 1)
	assert.Equal(t, "Low", result.UpdatedProducts[0].Name)
	assert.Equal(t, 12, result.UpdatedProducts[0].Stock)
	assert.Contains(t, result.Message, "Restocked 1")
}

func TestReplenishLowStockScanNothingBelowFloor(t *testing.T) {
	store := newMemStore()
	engine := NewMutationEngine(store, nil)
	replenisher := NewStockReplenisher(store, nil)
	ctx := context.Background()

	_, err := engine.CreateProduct(ctx, &CreateProductInput{
		Name: "Plenty", Price: decimal.NewFromInt(1), Stock: 30,
	})
	require.NoError(t, err)

	result, err := replenisher.ReplenishLowStock(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, result.UpdatedProducts)
	assert.Equal(t, "No products below stock floor", result.Message)
}
