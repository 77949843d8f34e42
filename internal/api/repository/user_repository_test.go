package repository

import (
	"context"
	"ctchen222/book-catalog/internal/api/models"
	"ctchen222/book-catalog/internal/db"
	"testing"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash", SecurityStamp: "stamp"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected id to be set")
	}

	got, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername error: %v", err)
	}
	if got == nil || *got != *user {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserRepository_UsernameIsCaseSensitive(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.CreateUser(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h", SecurityStamp: "s"}); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	got, err := repo.GetUserByUsername(ctx, "Alice")
	if err != nil {
		t.Fatalf("GetUserByUsername error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no match for different case, got %+v", got)
	}

	if err := repo.CreateUser(ctx, &models.User{Username: "Alice", Email: "b@x.com", PasswordHash: "h", SecurityStamp: "s"}); err != nil {
		t.Fatalf("expected distinct-case username to be accepted: %v", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h", SecurityStamp: "s"}
	if err := repo.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	dup := u
	err := repo.CreateUser(ctx, &dup)
	if !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestUserRepository_Unknown(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	got, err := repo.GetUserByUsername(context.Background(), "ghost")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", got, err)
	}
}
