package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"
)

// ClubSource provides the club refresh operations used by the queue
// processors. *repository.ClubRepository satisfies it.
type ClubSource interface {
	RefreshClub(ctx context.Context, clubID string) error
	StaleClubIDs(maxAge time.Duration) ([]string, error)
}

// RefreshClubTask re-fetches one club's relation graph into the cache.
type RefreshClubTask struct {
	ClubID string `json:"club_id"`
}

// Config returns the queue configuration for club refresh tasks.
func (t RefreshClubTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_club",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NewRefreshClubQueue creates the queue processing single-club refreshes.
func NewRefreshClubQueue(clubs ClubSource, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(func(ctx context.Context, task RefreshClubTask) error {
		if err := clubs.RefreshClub(ctx, task.ClubID); err != nil {
			return fmt.Errorf("refresh club %s: %w", task.ClubID, err)
		}
		log.Info().Str("club_id", task.ClubID).Msg("club cache refreshed")
		return nil
	})
}

// SyncAllClubsTask fans out a RefreshClubTask for every stale cached club.
type SyncAllClubsTask struct {
	MaxAge time.Duration `json:"max_age"`
}

// Config returns the queue configuration for the fan-out task.
func (t SyncAllClubsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_all_clubs",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
		},
	}
}

// NewSyncAllClubsQueue creates the queue that enqueues per-club refreshes.
func NewSyncAllClubsQueue(clubs ClubSource, enqueue func(...backlite.Task) *backlite.TaskAddOp, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(func(ctx context.Context, task SyncAllClubsTask) error {
		ids, err := clubs.StaleClubIDs(task.MaxAge)
		if err != nil {
			return fmt.Errorf("list stale clubs: %w", err)
		}
		if len(ids) == 0 {
			log.Info().Msg("no stale clubs to refresh")
			return nil
		}

		refreshes := make([]backlite.Task, 0, len(ids))
		for _, id := range ids {
			refreshes = append(refreshes, RefreshClubTask{ClubID: id})
		}
		if _, err := enqueue(refreshes...).Ctx(ctx).Save(); err != nil {
			return fmt.Errorf("enqueue club refreshes: %w", err)
		}

		log.Info().Int("count", len(ids)).Msg("queued stale club refreshes")
		return nil
	})
}
