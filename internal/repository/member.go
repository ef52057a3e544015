package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/mapper"
	"github.com/bookclubhq/bookclub/internal/remote"
)

// MemberRepository serves member profiles.
type MemberRepository struct {
	remote  remoteSource
	members memberStore
	now     func() time.Time
	log     zerolog.Logger
}

// NewMemberRepository creates a member repository.
func NewMemberRepository(remote remoteSource, members memberStore, log zerolog.Logger) *MemberRepository {
	return &MemberRepository{
		remote:  remote,
		members: members,
		now:     time.Now,
		log:     log.With().Str("component", "member_repository").Logger(),
	}
}

// GetMember fetches a member by id.
func (r *MemberRepository) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	dto, err := r.remote.FetchMember(ctx, memberID)
	countFetch("member", err)
	if err != nil {
		return nil, err
	}
	return r.cacheAndReturn(dto), nil
}

// GetMemberByUserID resolves the member profile behind an auth user.
func (r *MemberRepository) GetMemberByUserID(ctx context.Context, userID string) (*domain.Member, error) {
	dto, err := r.remote.FetchMemberByUserID(ctx, userID)
	countFetch("member", err)
	if err != nil {
		return nil, err
	}
	return r.cacheAndReturn(dto), nil
}

// UpdateMember writes profile changes remotely, then refreshes the cache
// with the authoritative response.
func (r *MemberRepository) UpdateMember(ctx context.Context, update remote.MemberUpdateDTO) (*domain.Member, error) {
	dto, err := r.remote.UpdateMember(ctx, update)
	countFetch("member", err)
	if err != nil {
		return nil, err
	}
	return r.cacheAndReturn(dto), nil
}

func (r *MemberRepository) cacheAndReturn(dto *remote.MemberDTO) *domain.Member {
	member := mapper.MemberFromDTO(dto)
	bestEffort(r.log, "member", "member", func() error {
		return r.members.Upsert(mapper.MemberToEntity(&member, r.now()))
	})
	return &member
}
