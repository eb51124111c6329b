package jobs

import (
	"context"

	"crm-service/internal/scheduler"

	"go.uber.org/zap"
)

// StockScanJob triggers the catalog-wide low-stock restock through the
// upstream boundary and logs each bumped product. The bump itself is
// not idempotent; the scheduler's single-trigger-per-interval
// guarantee is what keeps it from double-applying.
type StockScanJob struct {
	api           API
	logger        *zap.Logger
	restockAmount int
}

// NewStockScanJob creates a new stock scan job
func NewStockScanJob(api API, logger *zap.Logger, restockAmount int) *StockScanJob {
	return &StockScanJob{api: api, logger: logger, restockAmount: restockAmount}
}

func (s *StockScanJob) Name() string { return StockUpdateJobName }

// Run invokes the restock mutation and logs the outcome per product
func (s *StockScanJob) Run(ctx context.Context) (scheduler.Summary, error) {
	resp, err := s.api.RestockLowStock(ctx, s.restockAmount)
	if err != nil {
		s.logger.Error("Low stock update failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Stock update", zap.String("message", resp.Message))
	for _, product := range resp.UpdatedProducts {
		s.logger.Info("Restocked product",
			zap.String("id", product.ID),
			zap.String("name", product.Name),
			zap.Int("new_stock", product.Stock))
	}

	return scheduler.Summary{"restocked": len(resp.UpdatedProducts)}, nil
}
