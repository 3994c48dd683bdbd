// Package users serves the public, read-only views of accounts: the user list
// used to populate owner filters and a single user's combos.
package users

import (
	"context"
	"errors"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
)

type UserService struct {
	users  store.UserRepository
	combos store.ComboRepository
}

func NewUserService(st store.Store) *UserService {
	return &UserService{users: st.Users(), combos: st.Combos()}
}

// ListUsers returns every user's id and username, nothing more.
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	return users, nil
}

// GetUserCombos returns a user's public summary and their combos, newest first.
func (s *UserService) GetUserCombos(ctx context.Context, userID int64) (*UserCombosResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	combos, err := s.combos.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list user combos", err)
	}

	return &UserCombosResponse{
		User:   models.UserSummary{ID: user.ID, Username: user.Username},
		Combos: combos,
	}, nil
}
