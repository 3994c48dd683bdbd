// Package sqlite implements store.Store on an embedded SQLite database through
// gorm and the pure-Go glebarez driver. It backs local development (DB_DRIVER=sqlite)
// and the service and handler tests.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
)

// Store is the SQLite engine.
type Store struct {
	db     *gorm.DB
	users  *UserRepository
	combos *ComboRepository
}

// Open connects to the database file at path (":memory:" works) and enables
// foreign keys. Schema creation is a separate step, see Migrate.
func Open(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		// Errors are left untranslated: gorm.ErrDuplicatedKey drops the column
		// name needed to tell a taken username from a taken email.
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite serialises writers; a single connection also keeps an in-memory
	// database alive and shared for the lifetime of the Store.
	sqlDB.SetMaxOpenConns(1)

	return &Store{
		db:     db,
		users:  &UserRepository{db: db},
		combos: &ComboRepository{db: db},
	}, nil
}

// Migrate creates or updates the tables for the models.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.User{}, &models.EmojiCombo{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Users returns the user repository.
func (s *Store) Users() store.UserRepository { return s.users }

// Combos returns the combo repository.
func (s *Store) Combos() store.ComboRepository { return s.combos }

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm and SQLite errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "username"):
			return store.ErrDuplicateUsername
		case strings.Contains(msg, "email"):
			return store.ErrDuplicateEmail
		}
	}
	return err
}
