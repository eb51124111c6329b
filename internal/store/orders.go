package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crm-service/internal/models"

	"github.com/google/uuid"
)

// CreateOrder inserts an order and its product references in one
// transaction. Either the order and all join rows commit or nothing
// does.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, productIDs []uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, order_number, customer_id, status, subtotal, tax_amount,
		                    discount_amount, total_amount, notes, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING updated_at`

	err = tx.QueryRowxContext(ctx, query,
		order.ID, order.OrderNumber, order.CustomerID, order.Status,
		order.Subtotal, order.TaxAmount, order.DiscountAmount, order.TotalAmount,
		order.Notes, order.OrderDate,
	).Scan(&order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, productID := range productIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_products (order_id, product_id) VALUES ($1, $2)",
			order.ID, productID)
		if err != nil {
			return fmt.Errorf("failed to insert order product: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID. Returns (nil, nil) when no
// order matches.
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderProducts retrieves the products referenced by an order
func (s *Store) GetOrderProducts(ctx context.Context, orderID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.* FROM products p
		JOIN order_products op ON op.product_id = p.id
		WHERE op.order_id = $1`, orderID)
	return products, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// FilterOrders retrieves orders matching an optional status and an
// optional minimum order date, with customer emails resolved. The
// customer join is LEFT so an order with a dangling customer
// reference still comes back, with a nil email.
func (s *Store) FilterOrders(ctx context.Context, status string, orderDateGte *time.Time) ([]models.OrderSummary, error) {
	query := `
		SELECT o.id AS order_id, o.order_date, o.total_amount, c.email AS customer_email
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE ($1 = '' OR o.status = $1)
		  AND ($2::timestamptz IS NULL OR o.order_date >= $2)
		ORDER BY o.order_date`

	var summaries []models.OrderSummary
	err := s.db.SelectContext(ctx, &summaries, query, status, orderDateGte)
	return summaries, err
}
