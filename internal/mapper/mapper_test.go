package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/bookclub/internal/authapi"
	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/remote"
)

func TestClubFromDTO_FullGraph(t *testing.T) {
	serverID := remote.FlexID("srv-1")
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	dto := &remote.ClubDTO{
		ID:        "42",
		Name:      "Graphic Novels",
		ServerID:  &serverID,
		ShameList: []remote.FlexID{"7", "8"},
		Members: []remote.MemberDTO{
			{ID: "7", DisplayName: "Mary Jane Watson", Points: 30},
		},
		ActiveSession: &remote.SessionDTO{
			ID:      "s-1",
			ClubID:  "42",
			Book:    remote.BookDTO{ID: "b-1", Title: "Watchmen", Author: "Alan Moore"},
			DueDate: &due,
			Discussions: []remote.DiscussionDTO{
				{ID: "d-1", SessionID: "s-1", Title: "Chapters 1-3"},
			},
		},
		PastSessions: []remote.SessionDTO{
			{ID: "s-0", ClubID: "42", Book: remote.BookDTO{ID: "b-0", Title: "Maus"}},
		},
	}

	club := ClubFromDTO(dto)

	assert.Equal(t, "42", club.ID)
	require.NotNil(t, club.ServerID)
	assert.Equal(t, "srv-1", *club.ServerID)
	assert.Equal(t, []string{"7", "8"}, club.ShameList)
	require.NotNil(t, club.ActiveSession)
	assert.Equal(t, club.ID, club.ActiveSession.ClubID)
	assert.Equal(t, "Watchmen", club.ActiveSession.Book.Title)
	require.Len(t, club.ActiveSession.Discussions, 1)
	require.Len(t, club.PastSessions, 1)
	assert.Equal(t, "Maus", club.PastSessions[0].Book.Title)
}

func TestMemberFromDTO_Role(t *testing.T) {
	role := "owner"
	member := MemberFromDTO(&remote.MemberDTO{ID: "7", DisplayName: "Gwen", Role: &role})

	require.NotNil(t, member.Role)
	assert.Equal(t, domain.RoleOwner, *member.Role)
}

func TestClubEntityRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	channel := "123"
	club := &domain.Club{
		ID:             "42",
		Name:           "Graphic Novels",
		DiscordChannel: &channel,
		ShameList:      []string{"7", "8"},
	}

	entity := ClubToEntity(club, now)
	assert.Equal(t, now, entity.LastFetchedAt)
	assert.JSONEq(t, `["7","8"]`, entity.ShameList)

	back := ClubFromEntity(entity)
	assert.Equal(t, club.ID, back.ID)
	assert.Equal(t, club.Name, back.Name)
	assert.Equal(t, club.ShameList, back.ShameList)
	require.NotNil(t, back.DiscordChannel)
	assert.Equal(t, channel, *back.DiscordChannel)
}

func TestClubFromEntity_CorruptShameListDegrades(t *testing.T) {
	club := ClubFromEntity(&entities.Club{ID: "42", Name: "X", ShameList: "{not json"})
	assert.Empty(t, club.ShameList)
}

func TestSessionToEntity_ActiveFlag(t *testing.T) {
	session := &domain.Session{ID: "s-1", ClubID: "42", Book: domain.Book{ID: "b-1"}}

	active := SessionToEntity(session, true, time.Now())
	past := SessionToEntity(session, false, time.Now())

	assert.True(t, active.Active)
	assert.False(t, past.Active)
	assert.Equal(t, "b-1", active.BookID)
}

func TestUserFromAuth(t *testing.T) {
	u := &authapi.User{ID: "u-1", Email: "mj@example.com"}
	u.UserMetadata.FullName = "Mary Jane Watson"
	u.AppMetadata.Provider = "discord"

	user := UserFromAuth(u)

	assert.Equal(t, "u-1", user.ID)
	require.NotNil(t, user.Email)
	assert.Equal(t, "mj@example.com", *user.Email)
	require.NotNil(t, user.DisplayName)
	assert.Equal(t, "Mary Jane Watson", *user.DisplayName)
	assert.Equal(t, domain.ProviderDiscord, user.Provider)
}

func TestUserFromAuth_DefaultsToEmailProvider(t *testing.T) {
	user := UserFromAuth(&authapi.User{ID: "u-1"})
	assert.Equal(t, domain.ProviderEmail, user.Provider)
	assert.Nil(t, user.Email)
}
