// Package books provides cache operations for book records.
package books

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookclubhq/bookclub/internal/entities"
)

// Repository handles book cache operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a book row, replacing any existing row with the same id.
func (r *Repository) Upsert(book *entities.Book) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(book).Error
}

// UpsertMany writes many book rows in a single batch; failures propagate.
func (r *Repository) UpsertMany(books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&books).Error
}

// Get returns a book by id.
func (r *Repository) Get(id string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Search matches cached books by title or author substring.
func (r *Repository) Search(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Find(&books).Error
	return books, err
}

// DeleteAll removes every cached book.
func (r *Repository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entities.Book{}).Error
}
