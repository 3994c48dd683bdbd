// Package store defines the narrow persistence interface the services depend on.
// Engines live in sub-packages (postgres for production, sqlite for local
// development and tests); the auth and combo layers never see which one is in use.
package store

import (
	"context"
	"errors"

	"github.com/user/emojicringe-go/models"
)

// Sentinel errors every engine translates its driver errors into.
var (
	ErrNotFound          = errors.New("store: record not found")
	ErrDuplicateUsername = errors.New("store: username already exists")
	ErrDuplicateEmail    = errors.New("store: email already exists")
)

// ListParams selects one page of combos. CreatedBy, when set, restricts the
// listing to one owner.
type ListParams struct {
	Offset    int
	Limit     int
	CreatedBy *int64
}

// UserRepository persists users.
type UserRepository interface {
	// Create inserts the user and fills in ID, Role and CreatedAt.
	// Uniqueness violations come back as ErrDuplicateUsername or ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// FindByEmail matches the lower-cased email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByUsernameOrEmail is a cheap pre-check before hashing a password.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]models.UserSummary, error)
	SetRole(ctx context.Context, id int64, role string) error
}

// ComboRepository persists emoji combos. Listings are ordered newest first,
// ties broken by id descending.
type ComboRepository interface {
	Create(ctx context.Context, combo *models.EmojiCombo) (*models.EmojiCombo, error)
	FindByID(ctx context.Context, id int64) (*models.EmojiCombo, error)
	List(ctx context.Context, params ListParams) (*models.ComboPage, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.EmojiCombo, error)
	// Update applies patch only when the combo exists and belongs to ownerID;
	// otherwise it returns ErrNotFound.
	Update(ctx context.Context, id, ownerID int64, patch models.ComboPatch) (*models.EmojiCombo, error)
	// Delete removes the combo. With a non-nil ownerID the row must also belong
	// to that owner. A missing or foreign row yields ErrNotFound.
	Delete(ctx context.Context, id int64, ownerID *int64) error
}

// Store bundles the repositories of one engine with its lifecycle.
type Store interface {
	Users() UserRepository
	Combos() ComboRepository
	Ping(ctx context.Context) error
	Close() error
}
