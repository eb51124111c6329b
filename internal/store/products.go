package store

import (
	"context"
	"database/sql"

	"crm-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CreateProduct inserts a new product row
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, slug, sku, description, price, stock, low_stock_threshold,
		                      track_inventory, category, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		product.ID, product.Name, product.Slug, product.SKU, product.Description,
		product.Price, product.Stock, product.LowStockThreshold,
		product.TrackInventory, product.Category, product.IsActive, product.IsFeatured,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

// CountProducts returns the total number of products. Used for
// SKU/slug sequence generation.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products")
	return count, err
}

// GetProductByName retrieves a product by exact name. Returns
// (nil, nil) when no product matches.
func (s *Store) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves the subset of requested products that
// exist, in a stable order.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?) ORDER BY created_at", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct persists name/price/stock changes to a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, price = $2, stock = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	return s.db.QueryRowxContext(ctx, query,
		product.Name, product.Price, product.Stock, product.ID,
	).Scan(&product.UpdatedAt)
}

// RestockProductsBelow bumps every product with stock below floor by
// amount in a single statement, returning the updated rows.
func (s *Store) RestockProductsBelow(ctx context.Context, floor, amount int) ([]models.Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE stock < $2 AND track_inventory
		RETURNING *`

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, amount, floor)
	return products, err
}
