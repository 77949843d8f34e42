package repository

import (
	"context"
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/db"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BookRepository defines the interface for catalog data operations.
type BookRepository interface {
	Count(ctx context.Context) (int, error)
	ListTitlesByPopularity(ctx context.Context, offset, limit int) ([]string, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	ExistingTitles(ctx context.Context, titles []string) ([]string, error)
	InsertMany(ctx context.Context, books []models.Book) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

type sqliteBookRepository struct {
	db db.Queryer
}

// NewBookRepository creates a new SQLite-based BookRepository.
func NewBookRepository(q db.Queryer) BookRepository {
	return &sqliteBookRepository{db: q}
}

// Count returns the number of books in the catalog.
func (r *sqliteBookRepository) Count(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.Count")
	defer span.End()

	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books`); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// ListTitlesByPopularity returns titles ordered by views descending. Ties
// are broken by id so a fixed snapshot always yields the same order.
func (r *sqliteBookRepository) ListTitlesByPopularity(ctx context.Context, offset, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.ListTitlesByPopularity", trace.WithAttributes(
		attribute.Int("page.offset", offset),
		attribute.Int("page.limit", limit),
	))
	defer span.End()

	titles := []string{}
	query := `SELECT title FROM books ORDER BY views_count DESC, id ASC LIMIT ? OFFSET ?`
	if err := r.db.SelectContext(ctx, &titles, query, limit, offset); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return titles, nil
}

// GetByID returns the book with the given id, or nil if there is none.
func (r *sqliteBookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.GetByID", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	var book models.Book
	query := `SELECT id, title, author, publication_year, views_count FROM books WHERE id = ?`
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return &book, nil
}

// ExistingTitles returns the subset of titles already stored.
func (r *sqliteBookRepository) ExistingTitles(ctx context.Context, titles []string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.ExistingTitles", trace.WithAttributes(attribute.Int("titles.count", len(titles))))
	defer span.End()

	existing := []string{}
	if len(titles) == 0 {
		return existing, nil
	}
	query, args, err := sqlx.In(`SELECT title FROM books WHERE title IN (?)`, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to build title query: %w", err)
	}
	if err := r.db.SelectContext(ctx, &existing, r.db.Rebind(query), args...); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to look up titles: %w", err)
	}
	return existing, nil
}

// InsertMany inserts books in order and returns them with their new ids.
func (r *sqliteBookRepository) InsertMany(ctx context.Context, books []models.Book) ([]models.Book, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.InsertMany", trace.WithAttributes(attribute.Int("books.count", len(books))))
	defer span.End()

	query := `INSERT INTO books (title, author, publication_year, views_count) VALUES (?, ?, ?, ?)`
	inserted := make([]models.Book, 0, len(books))
	for _, b := range books {
		res, err := r.db.ExecContext(ctx, query, b.Title, b.Author, b.PublicationYear, b.ViewsCount)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to insert book %q: %w", b.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read book id: %w", err)
		}
		b.ID = id
		inserted = append(inserted, b)
	}
	return inserted, nil
}

// Update replaces every field of the book with the same id. It reports
// false when no such book exists.
func (r *sqliteBookRepository) Update(ctx context.Context, book *models.Book) (bool, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.Update", trace.WithAttributes(attribute.Int64("book.id", book.ID)))
	defer span.End()

	query := `UPDATE books SET title = ?, author = ?, publication_year = ?, views_count = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, book.Title, book.Author, book.PublicationYear, book.ViewsCount, book.ID)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to update book: %w", err)
	}
	return affected(res)
}

// Delete removes one book and reports whether it existed.
func (r *sqliteBookRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.Delete", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to delete book: %w", err)
	}
	return affected(res)
}

// DeleteMany removes every book whose id is in ids and returns how many
// rows went away. Unknown ids are ignored.
func (r *sqliteBookRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "BookRepository.DeleteMany", trace.WithAttributes(attribute.Int("ids.count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM books WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete books: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
