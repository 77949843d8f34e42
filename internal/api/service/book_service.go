package service

import (
	"context"
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/api/repository"
	"ctchen222/book-catalog/internal/db"
	"ctchen222/book-catalog/internal/validator"
	"fmt"
	"log/slog"
)

//go:generate mockgen -source=book_service.go -destination=mocks/mock_book_service.go -package=mocks

// BookService defines the catalog operations exposed over HTTP.
type BookService interface {
	List(ctx context.Context, pageNumber, pageSize int) (*models.Page, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	BatchInsert(ctx context.Context, books []models.Book) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
	BatchDelete(ctx context.Context, ids []int64) error
}

type bookService struct {
	tx    db.Transactor
	repos repository.Manager
}

// NewBookService creates a new BookService.
func NewBookService(tx db.Transactor, repos repository.Manager) BookService {
	return &bookService{tx: tx, repos: repos}
}

// List returns one page of titles ordered by views, most viewed first.
// The count and the slice are read in the same transaction.
func (s *bookService) List(ctx context.Context, pageNumber, pageSize int) (*models.Page, error) {
	if pageNumber < 1 || pageSize < 1 {
		return nil, ErrInvalidPageParams
	}

	page := &models.Page{PageNumber: pageNumber, PageSize: pageSize, Items: []string{}}
	err := s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		books := s.repos.Books(q)

		total, err := books.Count(ctx)
		if err != nil {
			return err
		}
		page.TotalItems = total
		page.TotalPages = total / pageSize
		if total%pageSize != 0 {
			page.TotalPages++
		}

		if total == 0 {
			return nil
		}
		if pageNumber > page.TotalPages {
			return ErrPageOutOfRange
		}

		titles, err := books.ListTitlesByPopularity(ctx, (pageNumber-1)*pageSize, pageSize)
		if err != nil {
			return err
		}
		page.Items = titles
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetByID returns one book or ErrNotFound.
func (s *bookService) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var book *models.Book
	err := s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		var err error
		book, err = s.repos.Books(q).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrNotFound
	}
	return book, nil
}

// BatchInsert stores every book or none of them. A title that is already
// stored, or that repeats an earlier title of the same batch, rejects the
// whole batch.
func (s *bookService) BatchInsert(ctx context.Context, books []models.Book) ([]models.Book, error) {
	if len(books) == 0 {
		return nil, ErrEmptyBatch
	}
	titles := make([]string, 0, len(books))
	for i := range books {
		if err := validateBook(&books[i]); err != nil {
			return nil, err
		}
		books[i].ID = 0
		titles = append(titles, books[i].Title)
	}

	var inserted []models.Book
	err := s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		repo := s.repos.Books(q)

		existing, err := repo.ExistingTitles(ctx, titles)
		if err != nil {
			return err
		}
		taken := make(map[string]struct{}, len(existing)+len(titles))
		for _, t := range existing {
			taken[t] = struct{}{}
		}

		var duplicates []string
		for _, t := range titles {
			if _, ok := taken[t]; ok {
				duplicates = append(duplicates, t)
				continue
			}
			taken[t] = struct{}{}
		}
		if len(duplicates) > 0 {
			return &DuplicateTitlesError{Titles: duplicates}
		}

		inserted, err = repo.InsertMany(ctx, books)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &DuplicateTitlesError{}
		}
		return nil, err
	}

	slog.InfoContext(ctx, "books inserted", "books.count", len(inserted))
	return inserted, nil
}

// Update replaces title, author, publication year and views of an existing
// book.
func (s *bookService) Update(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := validateBook(book); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		found, err := s.repos.Books(q).Update(ctx, book)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &DuplicateTitlesError{Titles: []string{book.Title}}
		}
		return nil, err
	}
	return book, nil
}

// Delete removes one book or returns ErrNotFound.
func (s *bookService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		found, err := s.repos.Books(q).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return nil
	})
}

// BatchDelete removes every book whose id is listed. Unknown ids are
// ignored unless none of the ids match, which yields ErrNotFound.
func (s *bookService) BatchDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return ErrEmptyIDList
	}
	return s.tx.WithTx(ctx, func(ctx context.Context, q db.Queryer) error {
		n, err := s.repos.Books(q).DeleteMany(ctx, ids)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		slog.InfoContext(ctx, "books deleted", "books.count", n, "ids.count", len(ids))
		return nil
	})
}

func validateBook(book *models.Book) error {
	if err := validator.GetValidator().Struct(book); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBook, err)
	}
	return nil
}
