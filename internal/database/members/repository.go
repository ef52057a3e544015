// Package members provides cache operations for member profiles.
package members

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookclubhq/bookclub/internal/entities"
)

// Repository handles member cache operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new members repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a member row, replacing any existing row with the same id.
func (r *Repository) Upsert(member *entities.Member) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(member).Error
}

// UpsertMany writes many member rows in a single batch; failures propagate.
func (r *Repository) UpsertMany(members []entities.Member) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&members).Error
}

// Get returns a member by id.
func (r *Repository) Get(id string) (*entities.Member, error) {
	var member entities.Member
	if err := r.db.First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByUserID returns the member profile linked to an auth user, or nil
// when no cached member carries that linkage.
func (r *Repository) GetByUserID(userID string) (*entities.Member, error) {
	var member entities.Member
	err := r.db.First(&member, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// LastFetchedAt reports when the member row was last written.
func (r *Repository) LastFetchedAt(id string) (*time.Time, error) {
	var member entities.Member
	err := r.db.Select("last_fetched_at").First(&member, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := member.LastFetchedAt
	return &t, nil
}

// DeleteAll removes every cached member.
func (r *Repository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entities.Member{}).Error
}
