// Package servers provides cache operations for server records.
package servers

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookclubhq/bookclub/internal/entities"
)

// Repository handles server cache operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new servers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a server row, replacing any existing row with the same id.
func (r *Repository) Upsert(server *entities.Server) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(server).Error
}

// Get returns a server by id.
func (r *Repository) Get(id string) (*entities.Server, error) {
	var server entities.Server
	if err := r.db.First(&server, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &server, nil
}

// Delete removes a single server row.
func (r *Repository) Delete(id string) error {
	return r.db.Delete(&entities.Server{}, "id = ?", id).Error
}

// DeleteAll removes every cached server.
func (r *Repository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entities.Server{}).Error
}
