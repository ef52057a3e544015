// Package clubs provides cache operations for club records, including the
// local relation-graph assembly used when serving a club without touching
// the network.
package clubs

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/mapper"
)

// Repository handles club cache operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new clubs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a club row, replacing any existing row with the same id.
func (r *Repository) Upsert(club *entities.Club) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(club).Error
}

// UpsertMany writes many club rows in a single batch. Unlike the
// per-relation writes in the sync layer, a batch failure propagates.
func (r *Repository) UpsertMany(clubs []entities.Club) error {
	if len(clubs) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&clubs).Error
}

// Get returns the raw club row.
func (r *Repository) Get(id string) (*entities.Club, error) {
	var club entities.Club
	if err := r.db.First(&club, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &club, nil
}

// GetClub reconstructs whatever subset of the club's relation graph is
// locally available: members via the join table and the most recent session
// with its discussions. If relation assembly fails for any reason the flat
// club record is returned instead of an error.
func (r *Repository) GetClub(id string) (*domain.Club, error) {
	entity, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	club := mapper.ClubFromEntity(entity)

	members, err := r.membersOf(id)
	if err != nil {
		return club, nil
	}
	club.Members = members

	session, err := r.currentSession(id)
	if err != nil {
		return club, nil
	}
	club.ActiveSession = session

	return club, nil
}

func (r *Repository) membersOf(clubID string) ([]domain.Member, error) {
	var joins []entities.ClubMember
	if err := r.db.Where("club_id = ?", clubID).Find(&joins).Error; err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(joins))
	for _, join := range joins {
		var row entities.Member
		if err := r.db.First(&row, "id = ?", join.MemberID).Error; err != nil {
			return nil, err
		}
		member := mapper.MemberFromEntity(&row)
		if join.Role != "" {
			role := domain.MemberRole(join.Role)
			member.Role = &role
		}
		members = append(members, member)
	}
	return members, nil
}

// currentSession picks the club's active session, falling back to the most
// recently fetched one. A club with no cached sessions yields nil.
func (r *Repository) currentSession(clubID string) (*domain.Session, error) {
	var row entities.Session
	err := r.db.Where("club_id = ?", clubID).
		Order("active DESC, last_fetched_at DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var book entities.Book
	bookPtr := &book
	if err := r.db.First(&book, "id = ?", row.BookID).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		bookPtr = nil
	}

	var discussions []entities.Discussion
	if err := r.db.Where("session_id = ?", row.ID).
		Order("scheduled_at ASC").
		Find(&discussions).Error; err != nil {
		return nil, err
	}

	session := mapper.SessionFromEntity(&row, bookPtr, discussions)
	return &session, nil
}

// SetMembers replaces the club's membership join rows.
func (r *Repository) SetMembers(clubID string, members []entities.ClubMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("club_id = ?", clubID).Delete(&entities.ClubMember{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

// LastFetchedAt reports when the club row was last written, for staleness
// checks. Returns nil when the club is not cached.
func (r *Repository) LastFetchedAt(id string) (*time.Time, error) {
	var club entities.Club
	err := r.db.Select("last_fetched_at").First(&club, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := club.LastFetchedAt
	return &t, nil
}

// ListIDs returns the ids of every cached club.
func (r *Repository) ListIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.Club{}).Pluck("id", &ids).Error
	return ids, err
}

// DeleteAll removes every cached club and membership row.
func (r *Repository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&entities.ClubMember{}).Error; err != nil {
		return err
	}
	return r.db.Where("1 = 1").Delete(&entities.Club{}).Error
}
