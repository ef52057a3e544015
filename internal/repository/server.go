package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/mapper"
)

// ServerRepository serves servers and their hosted clubs.
type ServerRepository struct {
	remote  remoteSource
	servers serverStore
	clubs   clubStore
	now     func() time.Time
	log     zerolog.Logger
}

// NewServerRepository creates a server repository.
func NewServerRepository(remote remoteSource, servers serverStore, clubs clubStore, log zerolog.Logger) *ServerRepository {
	return &ServerRepository{
		remote:  remote,
		servers: servers,
		clubs:   clubs,
		now:     time.Now,
		log:     log.With().Str("component", "server_repository").Logger(),
	}
}

// GetServer fetches a server with its clubs, caching both best-effort.
func (r *ServerRepository) GetServer(ctx context.Context, serverID string) (*domain.Server, error) {
	dto, err := r.remote.FetchServer(ctx, serverID)
	countFetch("server", err)
	if err != nil {
		return nil, err
	}

	server := mapper.ServerFromDTO(dto)
	fetchedAt := r.now()

	bestEffort(r.log, "server", "server", func() error {
		return r.servers.Upsert(mapper.ServerToEntity(server, fetchedAt))
	})
	if len(server.Clubs) > 0 {
		rows := make([]entities.Club, 0, len(server.Clubs))
		for i := range server.Clubs {
			rows = append(rows, *mapper.ClubToEntity(&server.Clubs[i], fetchedAt))
		}
		bestEffort(r.log, "server", "clubs", func() error {
			return r.clubs.UpsertMany(rows)
		})
	}
	return server, nil
}

// DeleteServer removes a server remotely, then drops the cached row. The
// remote delete is authoritative: when it fails (for example because the
// server still hosts active clubs) the cache is left alone and the error,
// carrying the server-provided reason, propagates.
func (r *ServerRepository) DeleteServer(ctx context.Context, serverID string) error {
	if err := r.remote.DeleteServer(ctx, serverID); err != nil {
		return err
	}

	bestEffort(r.log, "server", "delete", func() error {
		return r.servers.Delete(serverID)
	})
	return nil
}
