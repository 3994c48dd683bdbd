// Package combos implements the emoji combo API: creation, paginated listing,
// lookups and owner-scoped updates and deletes. Every successful write is
// published to the live feed.
package combos

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/auth"
	"github.com/user/emojicringe-go/feed"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
	"github.com/user/emojicringe-go/validation"
)

const msgComboNotFound = "Emoji combo not found"

// Publisher receives combo change events.
type Publisher interface {
	PublishPayload(eventType string, payload any)
}

// ComboService defines the operations behind the combo routes.
type ComboService interface {
	Create(ctx context.Context, caller *auth.Identity, req CreateRequest) (*models.EmojiCombo, error)
	List(ctx context.Context, q ListQuery) (*PaginatedCombosResponse, error)
	GetByID(ctx context.Context, id int64) (*models.EmojiCombo, error)
	ListMine(ctx context.Context, caller *auth.Identity) ([]models.EmojiCombo, error)
	// Update and Delete report a combo the caller does not own exactly like a
	// missing one.
	Update(ctx context.Context, caller *auth.Identity, id int64, req UpdateRequest) (*models.EmojiCombo, error)
	Delete(ctx context.Context, caller *auth.Identity, id int64) error
}

type comboServiceImpl struct {
	users     store.UserRepository
	combos    store.ComboRepository
	publisher Publisher
	logger    logrus.FieldLogger
}

// NewComboService creates a ComboService backed by st. A nil publisher disables events.
func NewComboService(st store.Store, publisher Publisher, logger logrus.FieldLogger) ComboService {
	return &comboServiceImpl{
		users:     st.Users(),
		combos:    st.Combos(),
		publisher: publisher,
		logger:    logger.WithField("component", "combos"),
	}
}

func (s *comboServiceImpl) publish(eventType string, payload any) {
	if s.publisher != nil {
		s.publisher.PublishPayload(eventType, payload)
	}
}

func (s *comboServiceImpl) Create(ctx context.Context, caller *auth.Identity, req CreateRequest) (*models.EmojiCombo, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewAuthError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load combo owner", err)
	}

	combo, err := s.combos.Create(ctx, &models.EmojiCombo{
		Emojis:      req.Emojis,
		Description: req.Description,
		CreatedBy:   owner.ID,
		Username:    owner.Username,
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create emoji combo", err)
	}

	s.publish(feed.ComboCreated, combo)
	return combo, nil
}

func (s *comboServiceImpl) List(ctx context.Context, q ListQuery) (*PaginatedCombosResponse, error) {
	page, err := s.combos.List(ctx, store.ListParams{
		Offset:    (q.Page - 1) * q.Limit,
		Limit:     q.Limit,
		CreatedBy: q.CreatedBy,
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list emoji combos", err)
	}

	return &PaginatedCombosResponse{
		Combos:      page.Combos,
		CurrentPage: q.Page,
		TotalPages:  TotalPages(page.Total, q.Limit),
		TotalItems:  page.Total,
	}, nil
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func (s *comboServiceImpl) GetByID(ctx context.Context, id int64) (*models.EmojiCombo, error) {
	combo, err := s.combos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError(msgComboNotFound, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get emoji combo", err)
	}
	return combo, nil
}

func (s *comboServiceImpl) ListMine(ctx context.Context, caller *auth.Identity) ([]models.EmojiCombo, error) {
	combos, err := s.combos.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list your emoji combos", err)
	}
	return combos, nil
}

func (s *comboServiceImpl) Update(ctx context.Context, caller *auth.Identity, id int64, req UpdateRequest) (*models.EmojiCombo, error) {
	patch := req.patch()
	if patch.Empty() {
		return nil, apperror.NewValidationError("At least one field to update is required", nil)
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	combo, err := s.combos.Update(ctx, id, caller.UserID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError(msgComboNotFound, nil)
		}
		return nil, apperror.NewDatabaseError("failed to update emoji combo", err)
	}

	s.publish(feed.ComboUpdated, combo)
	return combo, nil
}

func (s *comboServiceImpl) Delete(ctx context.Context, caller *auth.Identity, id int64) error {
	// The role is read from the store, never trusted from the token.
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperror.NewDatabaseError("failed to load caller", err)
	}

	ownerID := &caller.UserID
	if user.IsAdmin() {
		ownerID = nil
	}

	if err := s.combos.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NewNotFoundError(msgComboNotFound, nil)
		}
		return apperror.NewDatabaseError("failed to delete emoji combo", err)
	}

	if ownerID == nil {
		s.logger.WithFields(logrus.Fields{"combo_id": id, "admin_id": caller.UserID}).Info("combo deleted by admin")
	}
	s.publish(feed.ComboDeleted, DeletedEvent{ID: id})
	return nil
}
