// Package scheduler drives the periodic and queue-dispatched
// background jobs. Interval jobs fire on cron schedules with at most
// one in-flight run per job; queued jobs get a bounded fixed-delay
// retry budget, with attempt counting carried as data rather than
// hidden in callbacks.
package scheduler

import (
	"context"
	"time"
)

// RunState is the lifecycle state of a job run:
// Idle -> Running -> {Succeeded, FailedRetryable, FailedTerminal} -> Idle.
type RunState string

const (
	StateIdle            RunState = "idle"
	StateRunning         RunState = "running"
	StateSucceeded       RunState = "succeeded"
	StateFailedRetryable RunState = "failed_retryable"
	StateFailedTerminal  RunState = "failed_terminal"
)

// Summary carries the counts a successful run reports
type Summary map[string]int

// Job is a single schedulable unit of work. A run issues one query or
// mutation against the upstream boundary and interprets the result;
// partial results are not failures, only connectivity and
// malformed-response conditions are.
type Job interface {
	Name() string
	Run(ctx context.Context) (Summary, error)
}

// JobRun records the outcome of one execution. Logged, not persisted.
type JobRun struct {
	Job        string
	Attempt    int
	State      RunState
	Summary    Summary
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}
