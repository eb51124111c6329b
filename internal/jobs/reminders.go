package jobs

import (
	"context"
	"time"

	"crm-service/internal/scheduler"

	"go.uber.org/zap"
)

// MissingEmailSentinel is logged when an order's customer reference is
// unexpectedly absent. The scan degrades to the sentinel, never fails.
const MissingEmailSentinel = "N/A"

// OrderReminderScanner finds recent pending orders and logs one
// reminder record per order.
type OrderReminderScanner struct {
	api        API
	logger     *zap.Logger
	cutoffDays int
	now        func() time.Time
}

// NewOrderReminderScanner creates a new reminder scanner. cutoffDays
// bounds the scan window; 7 is the usual value.
func NewOrderReminderScanner(api API, logger *zap.Logger, cutoffDays int) *OrderReminderScanner {
	if cutoffDays <= 0 {
		cutoffDays = 7
	}
	return &OrderReminderScanner{
		api:        api,
		logger:     logger,
		cutoffDays: cutoffDays,
		now:        time.Now,
	}
}

func (o *OrderReminderScanner) Name() string { return OrderRemindersJobName }

// Run scans for pending orders placed within the cutoff window. An
// empty result set emits an explicit "no orders found" marker, which
// is distinct from an error.
func (o *OrderReminderScanner) Run(ctx context.Context) (scheduler.Summary, error) {
	cutoff := o.now().AddDate(0, 0, -o.cutoffDays)

	orders, err := o.api.PendingOrdersSince(ctx, cutoff)
	if err != nil {
		o.logger.Error("Order reminder scan failed", zap.Error(err))
		return nil, err
	}

	for _, order := range orders {
		email := MissingEmailSentinel
		if order.CustomerEmail != nil {
			email = *order.CustomerEmail
		}
		o.logger.Info("Order reminder",
			zap.String("order_id", order.OrderID.String()),
			zap.String("customer_email", email))
	}

	if len(orders) == 0 {
		o.logger.Info("No orders found", zap.Int("cutoff_days", o.cutoffDays))
	}

	o.logger.Info("Order reminders processed", zap.Int("count", len(orders)))
	return scheduler.Summary{"orders": len(orders)}, nil
}
