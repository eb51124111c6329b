package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents a CRM customer account
type Customer struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	Name          string    `db:"name" json:"name"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	StreetAddress string    `db:"street_address" json:"street_address,omitempty"`
	City          string    `db:"city" json:"city,omitempty"`
	State         string    `db:"state" json:"state,omitempty"`
	PostalCode    string    `db:"postal_code" json:"postal_code,omitempty"`
	Country       string    `db:"country" json:"country,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Product represents a product in the catalog
type Product struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Slug              string          `db:"slug" json:"slug"`
	SKU               string          `db:"sku" json:"sku"`
	Description       string          `db:"description" json:"description,omitempty"`
	Price             decimal.Decimal `db:"price" json:"price"`
	Stock             int             `db:"stock" json:"stock"`
	LowStockThreshold int             `db:"low_stock_threshold" json:"low_stock_threshold"`
	TrackInventory    bool            `db:"track_inventory" json:"track_inventory"`
	Category          string          `db:"category" json:"category,omitempty"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	IsFeatured        bool            `db:"is_featured" json:"is_featured"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Order represents a customer order. Monetary fields are snapshots
// taken at creation time; later product price changes do not affect
// existing orders.
type Order struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	OrderNumber    string          `db:"order_number" json:"order_number"`
	CustomerID     uuid.UUID       `db:"customer_id" json:"customer_id"`
	Status         string          `db:"status" json:"status"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Notes          string          `db:"notes" json:"notes,omitempty"`
	OrderDate      time.Time       `db:"order_date" json:"order_date"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Order statuses. Delivered and cancelled are terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// DefaultLowStockThreshold applies to products created without an
// explicit threshold.
const DefaultLowStockThreshold = 5

// BatchResult captures the per-item outcome of a bulk mutation. Every
// input item contributes to exactly one of Created or Errors, and both
// slices preserve input order.
type BatchResult struct {
	Created []*Customer `json:"created"`
	Errors  []string    `json:"errors"`
}

// OrderSummary is the reminder-scan projection of an order with its
// customer's email resolved. CustomerEmail is nil when the customer
// reference is absent.
type OrderSummary struct {
	OrderID       uuid.UUID       `db:"order_id" json:"order_id"`
	OrderDate     time.Time       `db:"order_date" json:"order_date"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	CustomerEmail *string         `db:"customer_email" json:"customer_email"`
}

// Stats holds the aggregate counters the report job reads.
type Stats struct {
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}
