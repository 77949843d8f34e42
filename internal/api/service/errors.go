package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateIdentity = errors.New("user already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrTooManyAttempts   = errors.New("too many failed login attempts")

	ErrInvalidPageParams = errors.New("invalid page number or page size")
	ErrPageOutOfRange    = errors.New("page number exceeds total pages")
	ErrEmptyBatch        = errors.New("no books provided")
	ErrEmptyIDList       = errors.New("no book ids provided")
	ErrInvalidBook       = errors.New("invalid book")
	ErrNotFound          = errors.New("book not found")
)

// WeakCredentialError lists every password rule a registration broke.
type WeakCredentialError struct {
	Violations []string
}

func (e *WeakCredentialError) Error() string {
	return "user creation failed! " + strings.Join(e.Violations, ", ")
}

// DuplicateTitlesError rejects a whole batch because some titles are taken.
// Titles is empty when the collision was only detected at commit time.
type DuplicateTitlesError struct {
	Titles []string
}

func (e *DuplicateTitlesError) Error() string {
	if len(e.Titles) == 0 {
		return "one or more book titles already exist"
	}
	return fmt.Sprintf("books with the following titles already exist: %s", strings.Join(e.Titles, ", "))
}
