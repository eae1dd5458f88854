package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/piiaudit/pkg/telemetry/metrics"
)

// ErrRunInProgress is returned by RunNow while another run is executing.
var ErrRunInProgress = errors.New("audit run already in progress")

// Job is a unit of scheduled work. *Runner implements it.
type Job interface {
	Run(ctx context.Context) (*Result, error)
}

// LastRun describes the most recent completed run.
type LastRun struct {
	Result     *Result
	Err        error
	FinishedAt time.Time
}

// Scheduler runs a Job on a cron schedule. A tick that fires while a run is
// still executing is skipped.
type Scheduler struct {
	job      Job
	schedule string
	cron     *cron.Cron
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu      sync.Mutex
	running bool

	busy atomic.Bool

	lastMu sync.RWMutex
	last   LastRun
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerMetrics records skipped runs on collector.
func WithSchedulerMetrics(collector *metrics.Collector) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = collector
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler for job on a standard five-field cron
// expression, e.g. "0 2 * * *" for daily at 02:00.
func NewScheduler(job Job, schedule string, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		job:      job,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "audit.scheduler")
	return s
}

// Start registers the job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.tick(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule audit: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("audit scheduler started",
		"schedule", s.schedule,
		"next_run", s.nextRunLocked(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// tick runs the job for a cron firing, logging instead of returning errors.
func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.RunNow(ctx)
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Warn("skipping scheduled audit, previous run still in progress")
		if s.metrics != nil {
			s.metrics.RecordSkippedRun()
		}
	}
}

// RunNow executes the job immediately unless a run is already executing.
func (s *Scheduler) RunNow(ctx context.Context) (*Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.busy.Store(false)

	res, err := s.job.Run(ctx)

	s.lastMu.Lock()
	s.last = LastRun{Result: res, Err: err, FinishedAt: time.Now()}
	s.lastMu.Unlock()

	return res, err
}

// Last returns the most recent completed run. FinishedAt is zero before the
// first run.
func (s *Scheduler) Last() LastRun {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("audit scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, or nil when not started.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	next := s.nextRunLocked()
	return &next
}

func (s *Scheduler) nextRunLocked() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
