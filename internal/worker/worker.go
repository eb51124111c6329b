package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"crm-service/internal/broker"
	"crm-service/internal/models"
	"crm-service/internal/scheduler"
	"crm-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// JobWorker consumes queue-dispatched job requests and drives each
// through the scheduler's bounded retry state machine. One consumer
// goroutine means at most one queued run is in flight at a time.
type JobWorker struct {
	consumer *broker.Consumer
	jobs     map[string]scheduler.Job
	policy   scheduler.RetryPolicy
	logger   *zap.Logger
}

// NewJobWorker creates a new job worker
func NewJobWorker(consumer *broker.Consumer, policy scheduler.RetryPolicy, registered ...scheduler.Job) *JobWorker {
	jobs := make(map[string]scheduler.Job, len(registered))
	for _, job := range registered {
		jobs[job.Name()] = job
	}
	return &JobWorker{
		consumer: consumer,
		jobs:     jobs,
		policy:   policy,
		logger:   util.GetLogger(),
	}
}

// Start consumes job requests until ctx is cancelled
func (w *JobWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting job worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *JobWorker) Stop() error {
	w.logger.Info("Stopping job worker")
	return w.consumer.Close()
}

func (w *JobWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	if base.EventType != models.EventTypeJobRequested {
		return nil
	}

	var event models.JobRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal JobRequested event: %w", err)
	}

	job, ok := w.jobs[event.JobName]
	if !ok {
		w.logger.Warn("Unknown job requested", zap.String("job", event.JobName))
		return nil
	}

	// Terminal failures are already logged and counted inside the
	// retry runner; the message is still committed so the request is
	// not redelivered past its budget.
	if _, err := scheduler.RunWithRetry(ctx, job, w.policy, event.Attempt); err != nil {
		w.logger.Error("Queued job run ended in failure",
			zap.String("job", event.JobName),
			zap.Error(err))
	}
	return nil
}
