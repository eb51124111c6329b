package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-service/internal/models"

	"github.com/google/uuid"
)

// memStore is an in-memory RecordStore for engine tests. It mirrors
// the per-item semantics of the Postgres batch path: a failing item
// never blocks its siblings.
type memStore struct {
	mu            sync.Mutex
	customers     map[uuid.UUID]*models.Customer
	emails        map[string]bool
	products      map[uuid.UUID]*models.Product
	productOrder  []uuid.UUID
	orders        map[uuid.UUID]*models.Order
	orderProducts map[uuid.UUID][]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		customers:     make(map[uuid.UUID]*models.Customer),
		emails:        make(map[string]bool),
		products:      make(map[uuid.UUID]*models.Product),
		orders:        make(map[uuid.UUID]*models.Order),
		orderProducts: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memStore) CustomerEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emails[email], nil
}

func (m *memStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCustomer(customer)
}

func (m *memStore) insertCustomer(customer *models.Customer) error {
	if m.emails[customer.Email] {
		return fmt.Errorf("email already exists: %s", customer.Email)
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	m.customers[customer.ID] = customer
	m.emails[customer.Email] = true
	return nil
}

func (m *memStore) CreateCustomersBatch(_ context.Context, candidates []*models.Customer) ([]error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]error, len(candidates))
	for i, candidate := range candidates {
		results[i] = m.insertCustomer(candidate)
	}
	return results, nil
}

func (m *memStore) GetCustomerByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[id], nil
}

func (m *memStore) CountProducts(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func (m *memStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	m.products[product.ID] = product
	m.productOrder = append(m.productOrder, product.ID)
	return nil
}

func (m *memStore) GetProductsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	requested := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	var found []models.Product
	for _, id := range m.productOrder {
		if requested[id] {
			found = append(found, *m.products[id])
		}
	}
	return found, nil
}

func (m *memStore) GetProductByName(_ context.Context, name string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.productOrder {
		if m.products[id].Name == name {
			copied := *m.products[id]
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.products[product.ID]
	if !ok {
		return fmt.Errorf("product not found: %s", product.ID)
	}
	product.UpdatedAt = time.Now()
	*stored = *product
	return nil
}

func (m *memStore) RestockProductsBelow(_ context.Context, floor, amount int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated []models.Product
	for _, id := range m.productOrder {
		product := m.products[id]
		if product.Stock < floor && product.TrackInventory {
			product.Stock += amount
			product.UpdatedAt = time.Now()
			updated = append(updated, *product)
		}
	}
	return updated, nil
}

func (m *memStore) CountOrders(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders), nil
}

func (m *memStore) CreateOrder(_ context.Context, order *models.Order, productIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.UpdatedAt = time.Now()
	m.orders[order.ID] = order
	m.orderProducts[order.ID] = productIDs
	return nil
}
