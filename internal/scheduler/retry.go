package scheduler

import (
	"context"
	"time"

	"crm-service/internal/util"

	"go.uber.org/zap"
)

// RetryPolicy bounds the automatic retries of a queue-dispatched job.
// The delay is fixed, not exponential; MaxAttempts counts the initial
// run, so MaxAttempts=3 means at most two retries.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the report job's contract: three attempts
// total, 60 seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 60 * time.Second}
}

// RunWithRetry drives a job through the retry state machine starting
// at startAttempt (1-indexed). Each failed attempt transitions to
// FailedRetryable until the budget is spent, at which point the run is
// FailedTerminal and the terminal failure is surfaced, not silently
// dropped. A run past MaxAttempts never happens.
func RunWithRetry(ctx context.Context, job Job, policy RetryPolicy, startAttempt int) (JobRun, error) {
	logger := util.GetLogger()
	if startAttempt < 1 {
		startAttempt = 1
	}

	var run JobRun
	for attempt := startAttempt; attempt <= policy.MaxAttempts; attempt++ {
		run = Execute(ctx, job, attempt)
		if run.State == StateSucceeded {
			return run, nil
		}

		if attempt == policy.MaxAttempts {
			run.State = StateFailedTerminal
			util.JobTerminalFailuresTotal.WithLabelValues(job.Name()).Inc()
			logger.Error("Job failed terminally, retry budget exhausted",
				zap.String("job", job.Name()),
				zap.Int("attempts", attempt),
				zap.Error(run.Err))
			return run, run.Err
		}

		util.JobRetriesTotal.WithLabelValues(job.Name()).Inc()
		logger.Warn("Job failed, retry scheduled",
			zap.String("job", job.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", policy.Delay),
			zap.Error(run.Err))

		select {
		case <-ctx.Done():
			run.Err = ctx.Err()
			return run, ctx.Err()
		case <-time.After(policy.Delay):
		}
	}

	return run, run.Err
}

// Execute performs one run of a job, recording its JobRun outcome,
// metrics and structured log events.
func Execute(ctx context.Context, job Job, attempt int) JobRun {
	logger := util.GetLogger()

	run := JobRun{
		Job:       job.Name(),
		Attempt:   attempt,
		State:     StateRunning,
		StartedAt: time.Now(),
	}

	logger.Info("Job run started",
		zap.String("job", run.Job),
		zap.Int("attempt", attempt))

	summary, err := job.Run(ctx)
	run.FinishedAt = time.Now()
	run.Summary = summary
	util.JobRunDuration.WithLabelValues(run.Job).Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if err != nil {
		run.State = StateFailedRetryable
		run.Err = err
		util.JobRunsTotal.WithLabelValues(run.Job, "failure").Inc()
		logger.Error("Job run failed",
			zap.String("job", run.Job),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return run
	}

	run.State = StateSucceeded
	util.JobRunsTotal.WithLabelValues(run.Job, "success").Inc()
	logger.Info("Job run succeeded",
		zap.String("job", run.Job),
		zap.Int("attempt", attempt),
		zap.Any("summary", summary))
	return run
}
