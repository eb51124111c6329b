package jobs

import (
	"context"
	"fmt"

	"crm-service/internal/scheduler"

	"go.uber.org/zap"
)

// ReportGenerator summarizes CRM activity with one aggregate query.
// It does not retry on its own: failures surface to the scheduler's
// retry path for queue-dispatched jobs.
type ReportGenerator struct {
	api    API
	logger *zap.Logger
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(api API, logger *zap.Logger) *ReportGenerator {
	return &ReportGenerator{api: api, logger: logger}
}

func (r *ReportGenerator) Name() string { return ReportJobName }

// Run fetches the aggregates and logs the report line
func (r *ReportGenerator) Run(ctx context.Context) (scheduler.Summary, error) {
	stats, err := r.api.Stats(ctx)
	if err != nil {
		r.logger.Error("Report generation failed", zap.Error(err))
		return nil, err
	}

	r.logger.Info(fmt.Sprintf("Report: %d customers, %d orders, %s revenue",
		stats.TotalCustomers, stats.TotalOrders, stats.TotalRevenue.StringFixed(2)))

	return scheduler.Summary{
		"customers": stats.TotalCustomers,
		"orders":    stats.TotalOrders,
	}, nil
}
