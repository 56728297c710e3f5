// Package scheduler runs background export jobs on a small worker pool.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStopped = errors.New("scheduler stopped before retry")

// Config sizes the worker pool and bounds every attempt
type Config struct {
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultConfig runs one backup at a time, retried three times five minutes apart
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 1,
		QueueSize:         16,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

func (c Config) validate() error {
	switch {
	case c.MaxConcurrentJobs <= 0:
		return fmt.Errorf("%w: max concurrent jobs must be positive", ErrInvalidConfig)
	case c.JobTimeout <= 0:
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Scheduler executes queued jobs on a fixed pool of workers. A failed job
// waits for its retry on a timer, not on a worker.
type Scheduler struct {
	cfg      Config
	executor JobExecutor
	logger   *zap.Logger
	now      func() time.Time
	onDone   func(*Job)

	queue chan *Job
	wg    sync.WaitGroup

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	retries map[uuid.UUID]*time.Timer
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithCompletionHook receives every job once it is final: succeeded, or
// failed with no retry left. Jobs dropped by Stop are not reported.
func WithCompletionHook(fn func(*Job)) Option {
	return func(s *Scheduler) { s.onDone = fn }
}

// New validates cfg and returns a stopped scheduler
func New(cfg Config, executor JobExecutor, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cfg:      cfg,
		executor: executor,
		logger:   logger,
		now:      time.Now,
		queue:    make(chan *Job, cfg.QueueSize),
		retries:  make(map[uuid.UUID]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start launches the workers. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	for id := range s.cfg.MaxConcurrentJobs {
		s.wg.Add(1)
		go s.work(ctx, id)
	}

	s.logger.Info("Backup scheduler started",
		zap.Int("workers", s.cfg.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs, drops pending retries and waits for the
// workers until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	for id, timer := range s.retries {
		timer.Stop()
		delete(s.retries, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Backup scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Backup scheduler stop timed out", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// SubmitJob queues job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	return s.enqueue(job)
}

// enqueue requires s.mu
func (s *Scheduler) enqueue(job *Job) error {
	select {
	case s.queue <- job:
		s.logger.Debug("Job queued", zap.Stringer("job_id", job.ID), zap.Strings("types", job.Types))
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleBackup submits a backup of types in format
func (s *Scheduler) ScheduleBackup(types []string, format string) (*Job, error) {
	job := NewJob(types, format, s.cfg.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) work(ctx context.Context, id int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.run(ctx, job, id)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job, workerID int) {
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.Stringer("job_id", job.ID),
		zap.Int("attempt", job.RetryCount+1),
	)
	job.begin(s.now())
	log.Info("Processing backup job", zap.Strings("types", job.Types), zap.String("format", job.Format))

	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	err := s.executor.Execute(attemptCtx, job)
	cancel()

	if err == nil {
		job.succeed(s.now())
		log.Info("Backup job completed", zap.String("output", job.Output))
		s.finish(job)
		return
	}

	job.fail(s.now(), err)
	log.Error("Backup job failed", zap.Error(err))
	if ctx.Err() != nil || !job.retryable() {
		s.finish(job)
		return
	}

	job.retryAt(s.now(), s.cfg.RetryDelay)
	log.Info("Backup job will be retried",
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Timep("next_retry_at", job.NextRetryAt),
	)
	s.scheduleRetry(job)
}

func (s *Scheduler) scheduleRetry(job *Job) {
	s.mu.Lock()
	if s.running {
		s.retries[job.ID] = time.AfterFunc(s.cfg.RetryDelay, func() { s.retry(job) })
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	job.fail(s.now(), errStopped)
	s.finish(job)
}

func (s *Scheduler) retry(job *Job) {
	s.mu.Lock()
	if _, pending := s.retries[job.ID]; !pending {
		// dropped by Stop
		s.mu.Unlock()
		return
	}
	delete(s.retries, job.ID)
	err := s.enqueue(job)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Failed to re-queue backup job", zap.Stringer("job_id", job.ID), zap.Error(err))
		job.fail(s.now(), err)
		s.finish(job)
	}
}

func (s *Scheduler) finish(job *Job) {
	if s.onDone != nil {
		s.onDone(job)
	}
}
