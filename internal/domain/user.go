package domain

// AuthProvider identifies how a user authenticated.
type AuthProvider string

const (
	ProviderEmail   AuthProvider = "email"
	ProviderDiscord AuthProvider = "discord"
	ProviderGoogle  AuthProvider = "google"
	ProviderApple   AuthProvider = "apple"
)

// User is the authenticated identity, distinct from Member (the club-facing
// profile a user may own).
type User struct {
	ID          string
	Email       *string
	DisplayName *string
	AvatarURL   *string
	Provider    AuthProvider
}
