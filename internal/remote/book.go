package remote

import (
	"context"
	"net/http"
	"net/url"
)

// SearchBooks queries the book catalogue. An empty result set is a
// successful empty slice, never an error.
func (c *Client) SearchBooks(ctx context.Context, query string) ([]BookDTO, error) {
	q := url.Values{}
	q.Set("search", query)

	var dtos []BookDTO
	if err := c.call(ctx, http.MethodGet, "book", q, nil, &dtos); err != nil {
		return nil, err
	}
	if dtos == nil {
		dtos = []BookDTO{}
	}
	return dtos, nil
}

// FetchBook retrieves a single book by id.
func (c *Client) FetchBook(ctx context.Context, bookID string) (*BookDTO, error) {
	q := url.Values{}
	q.Set("book_id", bookID)

	var dto BookDTO
	if err := c.call(ctx, http.MethodGet, "book", q, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}
