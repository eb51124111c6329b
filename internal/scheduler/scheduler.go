package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-service/internal/util"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Locker is the optional distributed lock guarding interval jobs
// across processes. *redisclient.Client implements it.
type Locker interface {
	AcquireJobLock(ctx context.Context, jobName string, ttl time.Duration) (bool, error)
	ReleaseJobLock(ctx context.Context, jobName string) error
}

// Scheduler triggers interval-polled jobs on cron schedules and fires
// dispatch callbacks for queue-dispatched jobs. Interval jobs are
// guaranteed at most one in-flight run per job: a trigger that fires
// while a prior run is still going is skipped, never run concurrently
// with itself.
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	lockTTL time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	gates  map[string]*sync.Mutex
	states map[string]RunState
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocker enables the cross-process job lock
func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// New creates a new Scheduler
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		lockTTL: 10 * time.Minute,
		logger:  util.GetLogger(),
		gates:   make(map[string]*sync.Mutex),
		states:  make(map[string]RunState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddIntervalJob registers an interval-polled job on a cron schedule.
// Failures are logged and the job waits for its next trigger; there is
// no retry escalation on this path.
func (s *Scheduler) AddIntervalJob(spec string, job Job) error {
	s.mu.Lock()
	if _, dup := s.gates[job.Name()]; dup {
		s.mu.Unlock()
		return fmt.Errorf("job already registered: %s", job.Name())
	}
	gate := &sync.Mutex{}
	s.gates[job.Name()] = gate
	s.states[job.Name()] = StateIdle
	s.mu.Unlock()

	_, err := s.cron.AddFunc(spec, func() {
		s.TriggerInterval(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, job.Name(), err)
	}

	s.logger.Info("Interval job registered",
		zap.String("job", job.Name()),
		zap.String("schedule", spec))
	return nil
}

// TriggerInterval runs an interval job once, honoring the
// one-in-flight guarantee. Returns the run record, or ok=false when
// the trigger was skipped because a prior run is still in flight.
func (s *Scheduler) TriggerInterval(ctx context.Context, job Job) (JobRun, bool) {
	gate := s.gate(job.Name())
	if !gate.TryLock() {
		s.logger.Warn("Skipping trigger, previous run still in flight",
			zap.String("job", job.Name()))
		return JobRun{Job: job.Name(), State: StateIdle}, false
	}
	defer gate.Unlock()

	if s.locker != nil {
		acquired, err := s.locker.AcquireJobLock(ctx, job.Name(), s.lockTTL)
		if err != nil {
			s.logger.Error("Job lock acquisition failed",
				zap.String("job", job.Name()), zap.Error(err))
			return JobRun{Job: job.Name(), State: StateIdle}, false
		}
		if !acquired {
			s.logger.Warn("Skipping trigger, job lock held elsewhere",
				zap.String("job", job.Name()))
			return JobRun{Job: job.Name(), State: StateIdle}, false
		}
		defer func() {
			if err := s.locker.ReleaseJobLock(ctx, job.Name()); err != nil {
				s.logger.Error("Job lock release failed",
					zap.String("job", job.Name()), zap.Error(err))
			}
		}()
	}

	s.setState(job.Name(), StateRunning)
	run := Execute(ctx, job, 1)
	s.setState(job.Name(), StateIdle)
	return run, true
}

// AddQueuedTrigger registers a cron schedule that fires a dispatch
// callback instead of running a job in place. The callback enqueues a
// job request; a worker picks it up and drives the retry state
// machine.
func (s *Scheduler) AddQueuedTrigger(spec, jobName string, dispatch func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := dispatch(context.Background()); err != nil {
			s.logger.Error("Job dispatch failed",
				zap.String("job", jobName), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, jobName, err)
	}

	s.logger.Info("Queued job trigger registered",
		zap.String("job", jobName),
		zap.String("schedule", spec))
	return nil
}

// Start launches the cron loop
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Job scheduler started")
}

// Stop stops the cron loop and waits for in-flight runs started by it
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Job scheduler stopped")
}

// State reports the current state of a registered interval job
func (s *Scheduler) State(jobName string) RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[jobName]; ok {
		return state
	}
	return StateIdle
}

func (s *Scheduler) gate(jobName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate, ok := s.gates[jobName]
	if !ok {
		gate = &sync.Mutex{}
		s.gates[jobName] = gate
	}
	return gate
}

func (s *Scheduler) setState(jobName string, state RunState) {
	s.mu.Lock()
	s.states[jobName] = state
	s.mu.Unlock()
}
