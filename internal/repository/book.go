package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/mapper"
)

// BookRepository serves book lookups and searches.
type BookRepository struct {
	remote remoteSource
	books  bookStore
	now    func() time.Time
	log    zerolog.Logger
}

// NewBookRepository creates a book repository.
func NewBookRepository(remote remoteSource, books bookStore, log zerolog.Logger) *BookRepository {
	return &BookRepository{
		remote: remote,
		books:  books,
		now:    time.Now,
		log:    log.With().Str("component", "book_repository").Logger(),
	}
}

// SearchBooks queries the remote catalog. No matches is an empty slice, not
// an error. Results are cached best-effort in one batch.
func (r *BookRepository) SearchBooks(ctx context.Context, query string) ([]domain.Book, error) {
	dtos, err := r.remote.SearchBooks(ctx, query)
	countFetch("book", err)
	if err != nil {
		return nil, err
	}

	books := make([]domain.Book, 0, len(dtos))
	rows := make([]entities.Book, 0, len(dtos))
	fetchedAt := r.now()
	for i := range dtos {
		book := mapper.BookFromDTO(&dtos[i])
		books = append(books, book)
		rows = append(rows, *mapper.BookToEntity(&book, fetchedAt))
	}

	bestEffort(r.log, "book", "search_results", func() error {
		return r.books.UpsertMany(rows)
	})
	return books, nil
}

// GetBook fetches a single book by id.
func (r *BookRepository) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	dto, err := r.remote.FetchBook(ctx, bookID)
	countFetch("book", err)
	if err != nil {
		return nil, err
	}

	book := mapper.BookFromDTO(dto)
	bestEffort(r.log, "book", "book", func() error {
		return r.books.Upsert(mapper.BookToEntity(&book, r.now()))
	})
	return &book, nil
}
