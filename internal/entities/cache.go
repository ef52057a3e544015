package entities

import "time"

// Cache entities mirror the remote payloads one table per type. Primary keys
// are the backend's string ids; every write stamps LastFetchedAt so callers
// can apply staleness heuristics. There is no TTL enforcement here.

type Club struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	Name           string     `gorm:"size:256" json:"name"`
	DiscordChannel *string    `gorm:"size:64" json:"discord_channel,omitempty"`
	ServerID       *string    `gorm:"index;size:64" json:"server_id,omitempty"`
	FoundedAt      *time.Time `json:"founded_at,omitempty"`

	// ShameList is stored as a JSON-encoded array of member ids.
	ShameList string `gorm:"type:text" json:"shame_list,omitempty"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
}

type Member struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	DisplayName string     `gorm:"size:256" json:"display_name"`
	Handle      *string    `gorm:"size:64" json:"handle,omitempty"`
	AvatarURL   *string    `gorm:"size:2048" json:"avatar_url,omitempty"`
	Points      int        `json:"points"`
	BooksRead   int        `json:"books_read"`
	UserID      *string    `gorm:"index;size:64" json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
}

// ClubMember is the club<->member join row. Role lives here because it is
// only meaningful for a specific membership.
type ClubMember struct {
	ClubID   string `gorm:"primaryKey;size:64" json:"club_id"`
	MemberID string `gorm:"primaryKey;size:64" json:"member_id"`
	Role     string `gorm:"size:16" json:"role,omitempty"`
}

type Session struct {
	ID      string     `gorm:"primaryKey;size:64" json:"id"`
	ClubID  string     `gorm:"index;size:64" json:"club_id"`
	BookID  string     `gorm:"index;size:64" json:"book_id"`
	DueDate *time.Time `json:"due_date,omitempty"`

	// Active marks the club's current session; past sessions have it unset.
	Active bool `gorm:"index" json:"active"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
}

type Discussion struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	SessionID   string    `gorm:"index;size:64" json:"session_id"`
	Title       string    `gorm:"size:256" json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    *string   `gorm:"size:256" json:"location,omitempty"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
}

type Book struct {
	ID        string  `gorm:"primaryKey;size:64" json:"id"`
	Title     string  `gorm:"index;size:512" json:"title"`
	Author    string  `gorm:"index;size:256" json:"author"`
	Edition   *string `gorm:"size:64" json:"edition,omitempty"`
	Year      *int    `json:"year,omitempty"`
	ISBN      *string `gorm:"size:20" json:"isbn,omitempty"`
	PageCount *int    `json:"page_count,omitempty"`
	CoverURL  *string `gorm:"size:2048" json:"cover_url,omitempty"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
}

type Server struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"size:256" json:"name"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
}

func (Club) TableName() string       { return "clubs" }
func (Member) TableName() string     { return "members" }
func (ClubMember) TableName() string { return "club_members" }
func (Session) TableName() string    { return "sessions" }
func (Discussion) TableName() string { return "discussions" }
func (Book) TableName() string       { return "books" }
func (Server) TableName() string     { return "servers" }
