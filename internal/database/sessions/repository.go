// Package sessions provides cache operations for reading sessions and their
// discussions.
package sessions

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookclubhq/bookclub/internal/entities"
)

// Repository handles session and discussion cache operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a session row. Marking a session active demotes any other
// active session of the same club first, so a club never has two.
func (r *Repository) Upsert(session *entities.Session) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if session.Active {
			err := tx.Model(&entities.Session{}).
				Where("club_id = ? AND id <> ?", session.ClubID, session.ID).
				Update("active", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(session).Error
	})
}

// UpsertMany writes many session rows in a single batch; failures propagate.
func (r *Repository) UpsertMany(sessions []entities.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sessions).Error
}

// UpsertDiscussion writes a single discussion row.
func (r *Repository) UpsertDiscussion(discussion *entities.Discussion) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(discussion).Error
}

// Get returns a session by id.
func (r *Repository) Get(id string) (*entities.Session, error) {
	var session entities.Session
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveForClub returns the club's active session, or nil when none is
// cached.
func (r *Repository) GetActiveForClub(clubID string) (*entities.Session, error) {
	var session entities.Session
	err := r.db.First(&session, "club_id = ? AND active = ?", clubID, true).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DiscussionsForSession returns the session's discussions in schedule order.
func (r *Repository) DiscussionsForSession(sessionID string) ([]entities.Discussion, error) {
	var discussions []entities.Discussion
	err := r.db.Where("session_id = ?", sessionID).
		Order("scheduled_at ASC").
		Find(&discussions).Error
	return discussions, err
}

// DeleteAll removes every cached session and discussion.
func (r *Repository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&entities.Discussion{}).Error; err != nil {
		return err
	}
	return r.db.Where("1 = 1").Delete(&entities.Session{}).Error
}
