package repository

import "ctchen222/book-catalog/internal/db"

//go:generate mockgen -source=manager.go -destination=mocks/mock_manager.go -package=mocks
//go:generate mockgen -source=user_repository.go -destination=mocks/mock_user_repository.go -package=mocks
//go:generate mockgen -source=book_repository.go -destination=mocks/mock_book_repository.go -package=mocks

// Manager hands out repositories bound to a connection or a transaction.
type Manager interface {
	Users(q db.Queryer) UserRepository
	Books(q db.Queryer) BookRepository
}

type sqliteManager struct{}

// NewManager returns the SQLite-backed repository Manager.
func NewManager() Manager {
	return sqliteManager{}
}

func (sqliteManager) Users(q db.Queryer) UserRepository {
	return NewUserRepository(q)
}

func (sqliteManager) Books(q db.Queryer) BookRepository {
	return NewBookRepository(q)
}
