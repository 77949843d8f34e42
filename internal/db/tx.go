package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Queryer is the subset of sqlx used by repositories. Both *sqlx.DB and
// *sqlx.Tx satisfy it.
type Queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Transactor runs a function inside a single transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Queryer) error) error
}

type sqlxTransactor struct {
	db   *sqlx.DB
	opts *sql.TxOptions
}

// NewTransactor returns a Transactor backed by db.
func NewTransactor(db *sqlx.DB) Transactor {
	return &sqlxTransactor{db: db}
}

func (t *sqlxTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx Queryer) error) error {
	return WithTx(ctx, t.db, t.opts, fn)
}

// WithTx begins a transaction, runs fn with it, and commits when fn returns
// nil. Any error or panic rolls the transaction back; panics are rethrown.
func WithTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx Queryer) error) (err error) {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
