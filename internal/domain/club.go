package domain

import "time"

// Club is a reading club, optionally bound to a Discord channel and hosted
// under a Server. Relation fields (Members, ActiveSession, PastSessions) are
// populated only when the source that produced the club had them available.
type Club struct {
	ID             string
	Name           string
	DiscordChannel *string
	ServerID       *string
	FoundedAt      *time.Time

	// ShameList holds member ids flagged for missing the current deadline.
	ShameList []string

	Members       []Member
	ActiveSession *Session
	PastSessions  []Session
}

// Server hosts zero or more clubs.
type Server struct {
	ID    string
	Name  string
	Clubs []Club
}
