// Package upstream is the typed HTTP client the background jobs use
// to reach the query/mutation boundary. The boundary is treated as a
// black box that either returns a decodable payload or fails; both
// transport errors and malformed responses surface as errors here and
// are classified at the job layer.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crm-service/internal/models"
)

// Client calls the CRM query/mutation API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new upstream client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// HelloResponse is the health payload the heartbeat reads
type HelloResponse struct {
	Status string `json:"status"`
	Hello  string `json:"hello"`
}

// OrdersResponse wraps a filtered order listing
type OrdersResponse struct {
	Orders []models.OrderSummary `json:"orders"`
}

// RestockResponse is the outcome of the low-stock restock mutation
type RestockResponse struct {
	UpdatedProducts []RestockedProduct `json:"updated_products"`
	Message         string             `json:"message"`
}

// RestockedProduct is one bumped product in a restock response
type RestockedProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Hello performs the heartbeat query
func (c *Client) Hello(ctx context.Context) (*HelloResponse, error) {
	var resp HelloResponse
	if err := c.get(ctx, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches the aggregate counters the report job summarizes
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := c.get(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PendingOrdersSince fetches pending orders placed on or after cutoff
func (c *Client) PendingOrdersSince(ctx context.Context, cutoff time.Time) ([]models.OrderSummary, error) {
	params := url.Values{}
	params.Set("status", models.OrderStatusPending)
	params.Set("order_date_gte", cutoff.Format(time.RFC3339))

	var resp OrdersResponse
	if err := c.get(ctx, "/api/v1/orders", params, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// RestockLowStock invokes the catalog-wide low-stock restock mutation
func (c *Client) RestockLowStock(ctx context.Context, restockAmount int) (*RestockResponse, error) {
	body, err := json.Marshal(map[string]int{"restock_amount": restockAmount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal restock request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/products/low-stock/restock", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp RestockResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed upstream response: %w", err)
	}
	return nil
}
