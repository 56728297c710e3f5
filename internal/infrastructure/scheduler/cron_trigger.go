package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BackupSubmitter queues backup jobs
type BackupSubmitter interface {
	ScheduleBackup(types []string, format string) (*Job, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// Hour and Minute of the daily run, local time
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// Types and Format of the archive; empty Types means every collection
	Types  []string
	Format string
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Hour:          2, // 2am
		Minute:        0,
		CheckInterval: time.Minute,
		Format:        "csv",
	}
}

// CronTrigger submits one backup job per day at the configured time
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler BackupSubmitter
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, scheduler BackupSubmitter, logger *zap.Logger) *CronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Backup trigger started",
		zap.Int("hour", c.config.Hour),
		zap.Int("minute", c.config.Minute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Backup trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(c.now())
		}
	}
}

// checkAndTrigger submits the daily backup when now matches the schedule
// and it has not run yet today. It reports whether a job was submitted.
func (c *CronTrigger) checkAndTrigger(now time.Time) bool {
	if !c.shouldRun(now) {
		return false
	}
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = currentDate
	c.mu.Unlock()

	job, err := c.scheduler.ScheduleBackup(c.config.Types, c.config.Format)
	if err != nil {
		c.logger.Error("Failed to schedule daily backup", zap.Error(err))
		return false
	}
	c.logger.Info("Daily backup scheduled", zap.String("job_id", job.ID.String()))
	return true
}

func (c *CronTrigger) shouldRun(now time.Time) bool {
	return now.Hour() == c.config.Hour && now.Minute() == c.config.Minute
}

// ParseCronSchedule reads the minute and hour fields of a five field cron
// expression. Only daily schedules are supported; empty means 02:00.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = 2, 0

	parts := strings.Fields(cronExpr)
	if len(parts) == 0 {
		return hour, minute, nil
	}
	if len(parts) != 5 {
		return 0, 0, fmt.Errorf("%w: cron expression %q must have 5 fields", ErrInvalidConfig, cronExpr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return 0, 0, fmt.Errorf("%w: only daily schedules are supported, got %q", ErrInvalidConfig, cronExpr)
		}
	}

	if minute, err = parseField(parts[0], 0, 59); err != nil {
		return 0, 0, err
	}
	if hour, err = parseField(parts[1], 0, 23); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

func parseField(s string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidConfig, s)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidConfig, v, lo, hi)
	}
	return v, nil
}
