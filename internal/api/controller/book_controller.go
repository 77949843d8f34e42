package controller

import (
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/api/response"
	"ctchen222/book-catalog/internal/api/service"
	"ctchen222/book-catalog/internal/auth"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// BookController handles catalog HTTP requests. Every route sits behind the
// access gate.
type BookController struct {
	bookService service.BookService
}

// NewBookController creates a new BookController.
func NewBookController(bookService service.BookService) *BookController {
	return &BookController{
		bookService: bookService,
	}
}

// List returns one page of titles, most viewed first.
func (bc *BookController) List(c *gin.Context) {
	var q models.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := bc.bookService.List(c.Request.Context(), q.PageNumber, q.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponse(c, page)
}

func (bc *BookController) GetByID(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	book, err := bc.bookService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponse(c, book)
}

// BatchInsert stores a JSON array of books. Either all are stored or none.
func (bc *BookController) BatchInsert(c *gin.Context) {
	var books []models.Book
	if err := c.ShouldBindJSON(&books); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	inserted, err := bc.bookService.BatchInsert(c.Request.Context(), books)
	if err != nil {
		writeError(c, err)
		return
	}

	audit(c, "books created", "books.count", len(inserted))
	response.CreatedResponse(c, "Books created successfully", inserted)
}

// Update replaces a book. The id in the path wins; an id in the body must
// agree with it.
func (bc *BookController) Update(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if book.ID != 0 && book.ID != id {
		response.ErrorResponse(c, http.StatusBadRequest, "book id in body does not match path")
		return
	}
	book.ID = id

	updated, err := bc.bookService.Update(c.Request.Context(), &book)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponse(c, updated)
}

func (bc *BookController) Delete(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := bc.bookService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	audit(c, "book deleted", "book.id", id)
	response.NoContentResponse(c)
}

// BatchDelete removes the books listed in a JSON array of ids.
func (bc *BookController) BatchDelete(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := bc.bookService.BatchDelete(c.Request.Context(), ids); err != nil {
		writeError(c, err)
		return
	}

	audit(c, "books deleted", "ids.count", len(ids))
	response.NoContentResponse(c)
}

func bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.ErrorResponse(c, http.StatusBadRequest, "invalid book id")
		return 0, false
	}
	return id, true
}

// audit records catalog writes together with the authenticated user.
func audit(c *gin.Context, msg string, args ...any) {
	ctx := c.Request.Context()
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		args = append(args, "user.name", claims.Username())
	}
	slog.InfoContext(ctx, msg, args...)
}
