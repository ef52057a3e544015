package domain

import (
	"sort"
	"time"
)

// Session is one reading cycle of a club. A session always carries exactly
// one book.
type Session struct {
	ID          string
	ClubID      string
	Book        Book
	DueDate     *time.Time
	Discussions []Discussion
}

// Discussion is a scheduled meeting within a session.
type Discussion struct {
	ID          string
	SessionID   string
	Title       string
	ScheduledAt time.Time
	Location    *string
}

// DiscussionTiming classifies a discussion relative to a reference time.
// The classification is derived for timeline display and never stored.
type DiscussionTiming string

const (
	DiscussionPast     DiscussionTiming = "past"
	DiscussionNext     DiscussionTiming = "next"
	DiscussionUpcoming DiscussionTiming = "upcoming"
)

// Timing returns the discussion's position relative to now. The earliest
// not-yet-started discussion of a session is "next"; the caller marks it via
// ClassifyDiscussions, a single discussion in isolation can only be past or
// upcoming.
func (d Discussion) Timing(now time.Time) DiscussionTiming {
	if d.ScheduledAt.Before(now) {
		return DiscussionPast
	}
	return DiscussionUpcoming
}

// ClassifyDiscussions returns the timing of each discussion in s, keyed by
// discussion id. Exactly one future discussion (the soonest) is classified
// as next.
func (s *Session) ClassifyDiscussions(now time.Time) map[string]DiscussionTiming {
	timings := make(map[string]DiscussionTiming, len(s.Discussions))

	ordered := make([]Discussion, len(s.Discussions))
	copy(ordered, s.Discussions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ScheduledAt.Before(ordered[j].ScheduledAt)
	})

	nextAssigned := false
	for _, d := range ordered {
		timing := d.Timing(now)
		if timing == DiscussionUpcoming && !nextAssigned {
			timing = DiscussionNext
			nextAssigned = true
		}
		timings[d.ID] = timing
	}
	return timings
}

// NextDiscussion returns the soonest discussion scheduled at or after now,
// or nil if every discussion is in the past.
func (s *Session) NextDiscussion(now time.Time) *Discussion {
	var next *Discussion
	for i := range s.Discussions {
		d := &s.Discussions[i]
		if d.ScheduledAt.Before(now) {
			continue
		}
		if next == nil || d.ScheduledAt.Before(next.ScheduledAt) {
			next = d
		}
	}
	return next
}
