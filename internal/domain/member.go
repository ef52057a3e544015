package domain

import (
	"strings"
	"time"
)

// MemberRole is a member's role within a specific club. A role is only
// meaningful on a club membership, never on the member record globally.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Member is a book-club participant.
type Member struct {
	ID          string
	DisplayName string
	Handle      *string
	AvatarURL   *string
	Points      int
	BooksRead   int

	// UserID links the member to an auth-user identity when the member has
	// signed up; invited members may not have one yet.
	UserID *string

	// Role is populated only when the member was loaded in the context of a
	// club membership.
	Role *MemberRole

	CreatedAt time.Time
}

// EffectiveHandle returns the member's handle, deriving a fallback from the
// display name (lower-cased, spaces removed) when no handle is set.
func (m Member) EffectiveHandle() string {
	if m.Handle != nil && *m.Handle != "" {
		return *m.Handle
	}
	return strings.ToLower(strings.ReplaceAll(m.DisplayName, " ", ""))
}

// Book is the volume read during a session.
type Book struct {
	ID        string
	Title     string
	Author    string
	Edition   *string
	Year      *int
	ISBN      *string
	PageCount *int
	CoverURL  *string
}
