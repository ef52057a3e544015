package tasks

import "time"

// Config tunes the background refresh queue. Zero-valued fields fall back
// to DefaultConfig when the client is created, so a partially populated
// config from the environment still yields a working queue.
type Config struct {
	// Workers is how many club refreshes may run concurrently. Refreshes
	// hit the backend, so this also bounds outbound request pressure.
	Workers int

	// MaxRetries bounds re-attempts for a failed refresh.
	MaxRetries int

	// RetryDelay is the pause before a failed refresh is retried.
	RetryDelay time.Duration

	// TaskTimeout caps a single task execution. A full club graph fetch
	// plus cache writes fits well inside the default.
	TaskTimeout time.Duration

	// ReleaseAfter is when a claimed but unfinished task is handed back
	// to the queue, covering worker crashes mid-refresh.
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks are purged.
	CleanupInterval time.Duration

	// RetentionDuration is how long finished tasks stay queryable, mainly
	// so failed refreshes can be inspected after the fact.
	RetentionDuration time.Duration
}

// DefaultConfig returns the baseline queue tuning: two workers keep the
// backend load negligible while still draining a full sync fan-out quickly.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// normalized fills zero-valued fields from DefaultConfig.
func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaults.RetryDelay
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = defaults.TaskTimeout
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = defaults.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaults.CleanupInterval
	}
	if c.RetentionDuration <= 0 {
		c.RetentionDuration = defaults.RetentionDuration
	}
	return c
}
