package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/bookclub/internal/config"
)

type stubEnqueuer struct {
	added []backlite.Task
}

func (s *stubEnqueuer) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	s.added = append(s.added, tasks...)
	return nil
}

func TestCacheSyncScheduler_DisabledDoesNotStart(t *testing.T) {
	cfg := config.CacheSync{Enabled: false, Schedule: "0 */6 * * *", MaxAge: 6 * time.Hour}
	s := NewCacheSyncScheduler(cfg, &stubEnqueuer{}, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestCacheSyncScheduler_InvalidScheduleFails(t *testing.T) {
	cfg := config.CacheSync{Enabled: true, Schedule: "not a cron spec", MaxAge: 6 * time.Hour}
	s := NewCacheSyncScheduler(cfg, &stubEnqueuer{}, zerolog.Nop())

	err := s.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestCacheSyncScheduler_StartAndStop(t *testing.T) {
	cfg := config.CacheSync{Enabled: true, Schedule: "0 */6 * * *", MaxAge: 6 * time.Hour}
	s := NewCacheSyncScheduler(cfg, &stubEnqueuer{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	// Starting twice is a no-op.
	require.NoError(t, s.Start(ctx))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}
