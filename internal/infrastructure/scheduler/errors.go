package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning rejects submissions before Start or after Stop
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	// ErrJobQueueFull rejects a backup when every queue slot is taken
	ErrJobQueueFull = errors.New("scheduler: job queue full")
	// ErrInvalidConfig wraps every Config and cron expression validation failure
	ErrInvalidConfig = errors.New("scheduler: invalid configuration")
)
