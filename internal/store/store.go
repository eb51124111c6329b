package store

import (
	"context"
	"fmt"
	"time"

	"crm-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CountCustomers returns the total number of customers
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM customers")
	return count, err
}

// CountOrders returns the total number of orders
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM orders")
	return count, err
}

// TotalRevenue sums total_amount across all orders
func (s *Store) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := s.db.GetContext(ctx, &revenue,
		"SELECT COALESCE(SUM(total_amount), 0) FROM orders")
	return revenue, err
}

// GetStats retrieves the aggregate counters in one round trip per
// counter; the result backs the stats endpoint the report job queries.
func (s *Store) GetStats(ctx context.Context) (*models.Stats, error) {
	customers, err := s.CountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	orders, err := s.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	revenue, err := s.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return &models.Stats{
		TotalCustomers: customers,
		TotalOrders:    orders,
		TotalRevenue:   revenue,
	}, nil
}
