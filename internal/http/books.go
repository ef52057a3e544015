package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/services"
)

// BooksController serves the book catalog.
type BooksController struct {
	books *services.BookService
}

// NewBooksController creates a books controller.
func NewBooksController(books *services.BookService) *BooksController {
	return &BooksController{books: books}
}

// Search queries the remote catalog. No matches yields an empty array.
func (bc *BooksController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	books, err := bc.books.SearchBooks(c.Request.Context(), query)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}
