package jobs

import (
	"context"

	"crm-service/internal/scheduler"

	"go.uber.org/zap"
)

// HeartbeatMonitor checks that the CRM API is alive
type HeartbeatMonitor struct {
	api    API
	logger *zap.Logger
}

// NewHeartbeatMonitor creates a new heartbeat monitor
func NewHeartbeatMonitor(api API, logger *zap.Logger) *HeartbeatMonitor {
	return &HeartbeatMonitor{api: api, logger: logger}
}

func (h *HeartbeatMonitor) Name() string { return HeartbeatJobName }

// Run issues the hello query and logs liveness
func (h *HeartbeatMonitor) Run(ctx context.Context) (scheduler.Summary, error) {
	resp, err := h.api.Hello(ctx)
	if err != nil {
		h.logger.Error("Heartbeat check failed", zap.Error(err))
		return nil, err
	}

	h.logger.Info("CRM is alive", zap.String("hello", resp.Hello))
	return scheduler.Summary{"alive": 1}, nil
}
