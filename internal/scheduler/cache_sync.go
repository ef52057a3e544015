// Package scheduler runs the periodic background refresh of cached clubs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/config"
	"github.com/bookclubhq/bookclub/internal/tasks"
)

// taskEnqueuer is the slice of the task client the scheduler needs.
type taskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// CacheSyncScheduler periodically enqueues a fan-out task that refreshes
// every stale cached club.
type CacheSyncScheduler struct {
	cfg   config.CacheSync
	queue taskEnqueuer
	log   zerolog.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewCacheSyncScheduler creates a scheduler instance.
func NewCacheSyncScheduler(cfg config.CacheSync, queue taskEnqueuer, log zerolog.Logger) *CacheSyncScheduler {
	return &CacheSyncScheduler{
		cfg:   cfg,
		queue: queue,
		log:   log.With().Str("component", "cache_sync").Logger(),
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cache sync is enabled.
func (s *CacheSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.cfg.Enabled {
		s.log.Info().Msg("cache sync disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.enqueueSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	s.log.Info().Str("schedule", s.cfg.Schedule).Msg("cache sync scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running enqueue to
// finish.
func (s *CacheSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.log.Info().Msg("cache sync scheduler stopped")
}

// RunNow triggers an immediate sync pass.
func (s *CacheSyncScheduler) RunNow(ctx context.Context) {
	s.enqueueSync(ctx)
}

// IsRunning reports whether the scheduler is active.
func (s *CacheSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sync will be enqueued.
func (s *CacheSyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CacheSyncScheduler) enqueueSync(ctx context.Context) {
	_, err := s.queue.Add(tasks.SyncAllClubsTask{MaxAge: s.cfg.MaxAge}).Ctx(ctx).Save()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to enqueue cache sync")
		return
	}
	s.log.Info().Dur("max_age", s.cfg.MaxAge).Msg("cache sync enqueued")
}
