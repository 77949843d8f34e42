package service

import (
	"context"
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/api/repository"
	"ctchen222/book-catalog/internal/auth"
	"ctchen222/book-catalog/internal/db"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSQLiteServices(t *testing.T) (UserService, BookService, *auth.TokenIssuer) {
	t.Helper()
	ctx := context.Background()

	pool, err := db.Connect(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	require.NoError(t, db.InitializeDB(ctx, pool))

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: []byte("integration-secret"), TTL: time.Hour})
	require.NoError(t, err)

	tx := db.NewTransactor(pool)
	repos := repository.NewManager()
	users, err := NewUserService(tx, repos, issuer, auth.DefaultPasswordPolicy(), WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	return users, NewBookService(tx, repos), issuer
}

func TestCatalog_RegisterThenLogin(t *testing.T) {
	users, _, issuer := newSQLiteServices(t)
	ctx := context.Background()

	_, err := users.Register(ctx, &models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "Secret123"})
	require.NoError(t, err)

	_, err = users.Register(ctx, &models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	resp, err := users.Login(ctx, &models.LoginRequest{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)

	claims, err := issuer.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice", claims.Username())
	assert.True(t, claims.ExpiresAt.Time.Equal(resp.Expiration))

	_, err = users.Login(ctx, &models.LoginRequest{Username: "Alice", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestCatalog_EmptyListing(t *testing.T) {
	_, books, _ := newSQLiteServices(t)

	page, err := books.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, []string{}, page.Items)
}

func TestCatalog_ListingOrderAcrossPages(t *testing.T) {
	_, books, _ := newSQLiteServices(t)
	ctx := context.Background()

	batch := make([]models.Book, 0, 7)
	for i, views := range []int64{5, 40, 5, 0, 12, 40, 3} {
		batch = append(batch, models.Book{Title: fmt.Sprintf("Book %d", i), ViewsCount: views})
	}
	inserted, err := books.BatchInsert(ctx, batch)
	require.NoError(t, err)

	viewsByTitle := make(map[string]int64, len(inserted))
	for _, b := range inserted {
		viewsByTitle[b.Title] = b.ViewsCount
	}

	var titles []string
	for pageNumber := 1; ; pageNumber++ {
		page, err := books.List(ctx, pageNumber, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		titles = append(titles, page.Items...)
		if pageNumber == page.TotalPages {
			break
		}
	}

	require.Len(t, titles, 7)
	for i := 1; i < len(titles); i++ {
		assert.GreaterOrEqual(t, viewsByTitle[titles[i-1]], viewsByTitle[titles[i]],
			"%q listed before %q", titles[i-1], titles[i])
	}
	// Ties keep insertion order.
	assert.Equal(t, []string{"Book 1", "Book 5"}, titles[:2])

	_, err = books.List(ctx, 4, 3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	page, err := books.List(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, titles, page.Items)
}

func TestCatalog_BatchInsertIsAllOrNothing(t *testing.T) {
	_, books, _ := newSQLiteServices(t)
	ctx := context.Background()

	_, err := books.BatchInsert(ctx, []models.Book{{Title: "Dune"}})
	require.NoError(t, err)

	_, err = books.BatchInsert(ctx, []models.Book{{Title: "Emma"}, {Title: "Dune"}, {Title: "Ulysses"}})
	var dup *DuplicateTitlesError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"Dune"}, dup.Titles)

	page, err := books.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, page.Items)
}

func TestCatalog_UpdateDeleteLifecycle(t *testing.T) {
	_, books, _ := newSQLiteServices(t)
	ctx := context.Background()

	inserted, err := books.BatchInsert(ctx, []models.Book{{Title: "Dune", Author: "Herbert"}, {Title: "Emma"}})
	require.NoError(t, err)
	dune, emma := inserted[0], inserted[1]

	dune.ViewsCount = 10
	dune.PublicationYear = 1965
	_, err = books.Update(ctx, &dune)
	require.NoError(t, err)

	got, err := books.GetByID(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, dune, *got)

	emma.Title = "Dune"
	_, err = books.Update(ctx, &emma)
	var dup *DuplicateTitlesError
	assert.ErrorAs(t, err, &dup)

	require.NoError(t, books.Delete(ctx, dune.ID))
	_, err = books.GetByID(ctx, dune.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, books.Delete(ctx, dune.ID), ErrNotFound)

	require.NoError(t, books.BatchDelete(ctx, []int64{dune.ID, emma.ID, 999}))
	assert.ErrorIs(t, books.BatchDelete(ctx, []int64{emma.ID}), ErrNotFound)
}
