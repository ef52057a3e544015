package config

// Default paths and URLs
const (
	// DefaultDatabasePath is the default path for the local cache database
	DefaultDatabasePath = "./bookclub.db"

	// DefaultSecureStorePath is the default path for the encrypted token database
	DefaultSecureStorePath = "./bookclub-secure.db"

	// DefaultOAuthRedirect is the deep-link providers redirect back to
	DefaultOAuthRedirect = "bookclub://auth/callback"
)
