// Package auth implements registration, login and token handling: HS256 JWTs
// carried in an httpOnly cookie or a bearer header, bcrypt password hashes and
// the middleware that puts the caller's identity on the request context.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
	"github.com/user/emojicringe-go/validation"
)

const msgUserExists = "User with this email or username already exists"

// AuthService holds the business logic behind the auth routes.
type AuthService struct {
	users      store.UserRepository
	tokens     *TokenIssuer
	logger     logrus.FieldLogger
	bcryptCost int
}

// NewAuthService creates an AuthService over the given user repository.
func NewAuthService(users store.UserRepository, tokens *TokenIssuer, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		logger:     logger.WithField("component", "auth"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// TokenTTL is the lifetime of the tokens this service issues.
func (s *AuthService) TokenTTL() time.Duration { return s.tokens.TTL() }

// Tokens exposes the issuer for the middleware.
func (s *AuthService) Tokens() *TokenIssuer { return s.tokens }

// Register validates req, creates the user and issues its first token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check existing users", err)
	}
	if exists {
		return nil, apperror.NewConflictError(msgUserExists, nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: string(hashed),
	})
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrDuplicateUsername) || errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperror.NewConflictError(msgUserExists, err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return s.newSession(user)
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewAuthError("Invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("Invalid credentials", nil)
	}

	return s.newSession(user)
}

// RefreshToken renews a session from a token whose signature is valid, even if
// it has expired, as long as its user still exists.
func (s *AuthService) RefreshToken(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, apperror.NewAuthError("Authentication required", nil)
	}
	claims, err := s.tokens.ParseForRefresh(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewAuthError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}
	return s.newSession(user)
}

// GetProfile returns the caller's own user record.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load profile", err)
	}
	return user, nil
}

func (s *AuthService) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}
