// Package mapper translates between the three representations of each
// entity: wire DTO, domain model and cache entity. All functions are pure;
// no mapper holds state.
package mapper

import (
	"encoding/json"
	"time"

	"github.com/bookclubhq/bookclub/internal/authapi"
	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/remote"
)

// --- DTO -> domain ---

func ClubFromDTO(dto *remote.ClubDTO) *domain.Club {
	club := &domain.Club{
		ID:             dto.ID.String(),
		Name:           dto.Name,
		DiscordChannel: dto.DiscordChannel,
		FoundedAt:      dto.FoundedAt,
	}
	if dto.ServerID != nil {
		id := dto.ServerID.String()
		club.ServerID = &id
	}
	for _, id := range dto.ShameList {
		club.ShameList = append(club.ShameList, id.String())
	}
	for _, m := range dto.Members {
		club.Members = append(club.Members, MemberFromDTO(&m))
	}
	if dto.ActiveSession != nil {
		session := SessionFromDTO(dto.ActiveSession)
		club.ActiveSession = &session
	}
	for _, s := range dto.PastSessions {
		club.PastSessions = append(club.PastSessions, SessionFromDTO(&s))
	}
	return club
}

func MemberFromDTO(dto *remote.MemberDTO) domain.Member {
	member := domain.Member{
		ID:          dto.ID.String(),
		DisplayName: dto.DisplayName,
		Handle:      dto.Handle,
		AvatarURL:   dto.AvatarURL,
		Points:      dto.Points,
		BooksRead:   dto.BooksRead,
		CreatedAt:   dto.CreatedAt,
	}
	if dto.UserID != nil {
		id := dto.UserID.String()
		member.UserID = &id
	}
	if dto.Role != nil {
		role := domain.MemberRole(*dto.Role)
		member.Role = &role
	}
	return member
}

func SessionFromDTO(dto *remote.SessionDTO) domain.Session {
	session := domain.Session{
		ID:      dto.ID.String(),
		ClubID:  dto.ClubID.String(),
		Book:    BookFromDTO(&dto.Book),
		DueDate: dto.DueDate,
	}
	for _, d := range dto.Discussions {
		session.Discussions = append(session.Discussions, DiscussionFromDTO(&d))
	}
	return session
}

func DiscussionFromDTO(dto *remote.DiscussionDTO) domain.Discussion {
	return domain.Discussion{
		ID:          dto.ID.String(),
		SessionID:   dto.SessionID.String(),
		Title:       dto.Title,
		ScheduledAt: dto.ScheduledAt,
		Location:    dto.Location,
	}
}

func BookFromDTO(dto *remote.BookDTO) domain.Book {
	return domain.Book{
		ID:        dto.ID.String(),
		Title:     dto.Title,
		Author:    dto.Author,
		Edition:   dto.Edition,
		Year:      dto.Year,
		ISBN:      dto.ISBN,
		PageCount: dto.PageCount,
		CoverURL:  dto.CoverURL,
	}
}

func ServerFromDTO(dto *remote.ServerDTO) *domain.Server {
	server := &domain.Server{
		ID:   dto.ID.String(),
		Name: dto.Name,
	}
	for _, c := range dto.Clubs {
		server.Clubs = append(server.Clubs, *ClubFromDTO(&c))
	}
	return server
}

// UserFromAuth maps the auth service's user record to the domain user. The
// provider tag defaults to email when the backend reports none.
func UserFromAuth(u *authapi.User) *domain.User {
	user := &domain.User{
		ID:       u.ID,
		Provider: domain.ProviderEmail,
	}
	if u.Email != "" {
		email := u.Email
		user.Email = &email
	}
	name := u.UserMetadata.FullName
	if name == "" {
		name = u.UserMetadata.Name
	}
	if name != "" {
		user.DisplayName = &name
	}
	if u.UserMetadata.AvatarURL != "" {
		avatar := u.UserMetadata.AvatarURL
		user.AvatarURL = &avatar
	}
	switch u.AppMetadata.Provider {
	case "discord":
		user.Provider = domain.ProviderDiscord
	case "google":
		user.Provider = domain.ProviderGoogle
	case "apple":
		user.Provider = domain.ProviderApple
	}
	return user
}

// --- domain -> entity ---

func ClubToEntity(club *domain.Club, fetchedAt time.Time) *entities.Club {
	entity := &entities.Club{
		ID:             club.ID,
		Name:           club.Name,
		DiscordChannel: club.DiscordChannel,
		ServerID:       club.ServerID,
		FoundedAt:      club.FoundedAt,
		LastFetchedAt:  fetchedAt,
	}
	if len(club.ShameList) > 0 {
		encoded, err := json.Marshal(club.ShameList)
		if err == nil {
			entity.ShameList = string(encoded)
		}
	}
	return entity
}

func MemberToEntity(member *domain.Member, fetchedAt time.Time) *entities.Member {
	return &entities.Member{
		ID:            member.ID,
		DisplayName:   member.DisplayName,
		Handle:        member.Handle,
		AvatarURL:     member.AvatarURL,
		Points:        member.Points,
		BooksRead:     member.BooksRead,
		UserID:        member.UserID,
		CreatedAt:     member.CreatedAt,
		LastFetchedAt: fetchedAt,
	}
}

func SessionToEntity(session *domain.Session, active bool, fetchedAt time.Time) *entities.Session {
	return &entities.Session{
		ID:            session.ID,
		ClubID:        session.ClubID,
		BookID:        session.Book.ID,
		DueDate:       session.DueDate,
		Active:        active,
		LastFetchedAt: fetchedAt,
	}
}

func DiscussionToEntity(discussion *domain.Discussion, fetchedAt time.Time) *entities.Discussion {
	return &entities.Discussion{
		ID:            discussion.ID,
		SessionID:     discussion.SessionID,
		Title:         discussion.Title,
		ScheduledAt:   discussion.ScheduledAt,
		Location:      discussion.Location,
		LastFetchedAt: fetchedAt,
	}
}

func BookToEntity(book *domain.Book, fetchedAt time.Time) *entities.Book {
	return &entities.Book{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Edition:       book.Edition,
		Year:          book.Year,
		ISBN:          book.ISBN,
		PageCount:     book.PageCount,
		CoverURL:      book.CoverURL,
		LastFetchedAt: fetchedAt,
	}
}

func ServerToEntity(server *domain.Server, fetchedAt time.Time) *entities.Server {
	return &entities.Server{
		ID:            server.ID,
		Name:          server.Name,
		LastFetchedAt: fetchedAt,
	}
}

// --- entity -> domain ---

func ClubFromEntity(entity *entities.Club) *domain.Club {
	club := &domain.Club{
		ID:             entity.ID,
		Name:           entity.Name,
		DiscordChannel: entity.DiscordChannel,
		ServerID:       entity.ServerID,
		FoundedAt:      entity.FoundedAt,
	}
	if entity.ShameList != "" {
		// A corrupt stored list degrades to an empty one.
		_ = json.Unmarshal([]byte(entity.ShameList), &club.ShameList)
	}
	return club
}

func MemberFromEntity(entity *entities.Member) domain.Member {
	return domain.Member{
		ID:          entity.ID,
		DisplayName: entity.DisplayName,
		Handle:      entity.Handle,
		AvatarURL:   entity.AvatarURL,
		Points:      entity.Points,
		BooksRead:   entity.BooksRead,
		UserID:      entity.UserID,
		CreatedAt:   entity.CreatedAt,
	}
}

func SessionFromEntity(entity *entities.Session, book *entities.Book, discussions []entities.Discussion) domain.Session {
	session := domain.Session{
		ID:      entity.ID,
		ClubID:  entity.ClubID,
		DueDate: entity.DueDate,
	}
	if book != nil {
		session.Book = BookFromEntity(book)
	}
	for _, d := range discussions {
		session.Discussions = append(session.Discussions, domain.Discussion{
			ID:          d.ID,
			SessionID:   d.SessionID,
			Title:       d.Title,
			ScheduledAt: d.ScheduledAt,
			Location:    d.Location,
		})
	}
	return session
}

func BookFromEntity(entity *entities.Book) domain.Book {
	return domain.Book{
		ID:        entity.ID,
		Title:     entity.Title,
		Author:    entity.Author,
		Edition:   entity.Edition,
		Year:      entity.Year,
		ISBN:      entity.ISBN,
		PageCount: entity.PageCount,
		CoverURL:  entity.CoverURL,
	}
}

func ServerFromEntity(entity *entities.Server) *domain.Server {
	return &domain.Server{
		ID:   entity.ID,
		Name: entity.Name,
	}
}
