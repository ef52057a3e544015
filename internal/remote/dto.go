package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FlexID accepts either a JSON number or a JSON string and normalizes it to
// a string. The legacy backend handed out auto-incrementing integer ids;
// newer rows carry opaque string ids. Marshalling always emits a string.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexID) String() string { return string(f) }

// ClubDTO is the club payload returned by the club edge function, including
// its nested relations when the backend resolved them.
type ClubDTO struct {
	ID             FlexID           `json:"id"`
	Name           string           `json:"name"`
	DiscordChannel *string          `json:"discord_channel"`
	ServerID       *FlexID          `json:"server_id"`
	FoundedAt      *time.Time       `json:"founded_at"`
	ShameList      []FlexID         `json:"shame_list"`
	Members        []MemberDTO      `json:"members"`
	ActiveSession  *SessionDTO      `json:"active_session"`
	PastSessions   []SessionDTO     `json:"past_sessions"`
}

type MemberDTO struct {
	ID          FlexID    `json:"id"`
	DisplayName string    `json:"display_name"`
	Handle      *string   `json:"handle"`
	AvatarURL   *string   `json:"avatar_url"`
	Points      int       `json:"points"`
	BooksRead   int       `json:"books_read"`
	UserID      *FlexID   `json:"user_id"`
	Role        *string   `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type SessionDTO struct {
	ID          FlexID          `json:"id"`
	ClubID      FlexID          `json:"club_id"`
	Book        BookDTO         `json:"book"`
	DueDate     *time.Time      `json:"due_date"`
	Discussions []DiscussionDTO `json:"discussions"`
}

type DiscussionDTO struct {
	ID          FlexID    `json:"id"`
	SessionID   FlexID    `json:"session_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    *string   `json:"location"`
}

type BookDTO struct {
	ID        FlexID  `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Edition   *string `json:"edition"`
	Year      *int    `json:"year"`
	ISBN      *string `json:"isbn"`
	PageCount *int    `json:"page_count"`
	CoverURL  *string `json:"cover_url"`
}

type ServerDTO struct {
	ID    FlexID    `json:"id"`
	Name  string    `json:"name"`
	Clubs []ClubDTO `json:"clubs"`
}

// envelope is the mutation response wrapper used by the edge functions.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// MemberUpdateDTO carries the mutable member profile fields.
type MemberUpdateDTO struct {
	ID          FlexID  `json:"id"`
	DisplayName string  `json:"display_name"`
	Handle      *string `json:"handle"`
	AvatarURL   *string `json:"avatar_url"`
}
