// Package postgres implements store.Store on PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/emojicringe-go/store"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// Store is the PostgreSQL engine. The pool is owned by the Store and closed by Close.
type Store struct {
	pool   *pgxpool.Pool
	users  *UserRepository
	combos *ComboRepository
}

// New wraps an already connected pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		users:  &UserRepository{pool: pool},
		combos: &ComboRepository{pool: pool},
	}
}

// Users returns the user repository.
func (s *Store) Users() store.UserRepository { return s.users }

// Combos returns the combo repository.
func (s *Store) Combos() store.ComboRepository { return s.combos }

// Ping checks the pool can still reach the server.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return store.ErrDuplicateUsername
		case strings.Contains(pgErr.ConstraintName, "email"):
			return store.ErrDuplicateEmail
		}
	}
	return err
}
