// Package jobs holds the background jobs the scheduler triggers. Each
// job issues one query or mutation against the upstream boundary and
// writes its events to a job-scoped append-only log. Jobs are also
// invocable standalone through cmd/crmjobs with identical effects.
package jobs

import (
	"context"
	"time"

	"crm-service/internal/models"
	"crm-service/internal/upstream"
)

// Job names, one per log file.
const (
	HeartbeatJobName      = "crm_heartbeat"
	StockUpdateJobName    = "low_stock_updates"
	OrderRemindersJobName = "order_reminders"
	ReportJobName         = "crm_report"
)

// API is the slice of the upstream boundary the jobs consume.
// *upstream.Client implements it.
type API interface {
	Hello(ctx context.Context) (*upstream.HelloResponse, error)
	Stats(ctx context.Context) (*models.Stats, error)
	PendingOrdersSince(ctx context.Context, cutoff time.Time) ([]models.OrderSummary, error)
	RestockLowStock(ctx context.Context, restockAmount int) (*upstream.RestockResponse, error)
}
