package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrDuplicateEmail is returned when a customer write collides with an
// existing email.
var ErrDuplicateEmail = errors.New("email already exists")

const insertCustomerQuery = `
	INSERT INTO customers (id, email, name, phone, street_address, city, state, postal_code, country, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at`

// CreateCustomer inserts a new customer row
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.db.QueryRowxContext(ctx, insertCustomerQuery,
		customer.ID, customer.Email, customer.Name, customer.Phone,
		customer.StreetAddress, customer.City, customer.State,
		customer.PostalCode, customer.Country, customer.IsActive,
	).Scan(&customer.CreatedAt, &customer.UpdatedAt)
}

// CustomerEmailExists checks email uniqueness
func (s *Store) CustomerEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)", email)
	return exists, err
}

// GetCustomerByID retrieves a customer by ID. Returns (nil, nil) when
// no customer matches.
func (s *Store) GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomerByEmail retrieves a customer by email. Returns (nil, nil)
// when no customer matches.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomersBatch writes candidates inside one transaction with a
// savepoint per item, so one item's failure rolls back only that item
// while its siblings still commit. The returned slice is aligned with
// the input: a nil entry means the candidate at that position was
// created. Duplicate checks run inside the transaction, so duplicates
// within the batch itself are caught too.
func (s *Store) CreateCustomersBatch(ctx context.Context, candidates []*models.Customer) ([]error, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	results := make([]error, len(candidates))

	for i, customer := range candidates {
		sp := fmt.Sprintf("customer_item_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			return nil, fmt.Errorf("failed to create savepoint: %w", err)
		}

		results[i] = createCustomerInTx(ctx, tx, customer)
		if results[i] != nil {
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); err != nil {
				return nil, fmt.Errorf("failed to roll back savepoint: %w", err)
			}
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			return nil, fmt.Errorf("failed to release savepoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}
	return results, nil
}

func createCustomerInTx(ctx context.Context, tx *sqlx.Tx, customer *models.Customer) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)", customer.Email); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, customer.Email)
	}

	return tx.QueryRowxContext(ctx, insertCustomerQuery,
		customer.ID, customer.Email, customer.Name, customer.Phone,
		customer.StreetAddress, customer.City, customer.State,
		customer.PostalCode, customer.Country, customer.IsActive,
	).Scan(&customer.CreatedAt, &customer.UpdatedAt)
}
