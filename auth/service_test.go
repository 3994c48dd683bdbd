package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/config"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store/sqlite"
)

const testSecret = "test-secret"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*AuthService, *sqlite.Store) {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })

	tokens := NewTokenIssuer(&config.AuthConfig{JWTSecret: testSecret, TokenDuration: 24 * time.Hour})
	svc := NewAuthService(s.Users(), tokens, quietLogger())
	svc.bcryptCost = bcrypt.MinCost
	return svc, s
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "Alice@X.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice", session.User.Username)
	assert.Equal(t, "alice@x.com", session.User.Email)
	assert.NotEqual(t, "secret1", session.User.HashedPassword)

	claims, err := svc.Tokens().Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestRegister_Conflict(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@x.com", Password: "secret1"})
	assert.True(t, apperror.IsConflictError(err))
	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Email: "ALICE@x.com", Password: "secret1"})
	assert.True(t, apperror.IsConflictError(err))

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegister_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterRequest{Username: "al", Email: "alice@x.com", Password: "secret1"})
	assert.True(t, apperror.IsValidationError(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	session, err := svc.Login(ctx, LoginRequest{Email: "ALICE@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "wrongpass"})
	require.Error(t, err)
	appErr, _ := apperror.FromError(err)
	assert.Equal(t, "Invalid credentials", appErr.Message)
	assert.Equal(t, 401, appErr.StatusCode())

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@x.com", Password: "secret1"})
	appErr, _ = apperror.FromError(err)
	assert.Equal(t, "Invalid credentials", appErr.Message)
}

func TestVerify_ExpiredAndTampered(t *testing.T) {
	svc, _ := newTestService(t)
	session, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	issuer := svc.Tokens()
	issuer.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = issuer.Verify(session.Token)
	assert.True(t, apperror.IsTokenExpired(err))
	issuer.now = time.Now

	_, err = issuer.Verify(session.Token + "x")
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidToken, appErr.Code)

	other := NewTokenIssuer(&config.AuthConfig{JWTSecret: "another", TokenDuration: time.Hour})
	_, err = other.Verify(session.Token)
	assert.True(t, apperror.IsAuthError(err))
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)

	// Issue a token that expired an hour ago.
	issuer := svc.Tokens()
	issuer.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	expired, err := issuer.Issue(session.User)
	require.NoError(t, err)
	issuer.now = time.Now

	refreshed, err := svc.RefreshToken(ctx, expired)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refreshed.User.ID)
	_, err = issuer.Verify(refreshed.Token)
	assert.NoError(t, err)

	_, err = svc.RefreshToken(ctx, "garbage")
	assert.True(t, apperror.IsAuthError(err))
	_, err = svc.RefreshToken(ctx, "")
	assert.True(t, apperror.IsAuthError(err))
}

func TestRefreshToken_UserGone(t *testing.T) {
	svc, _ := newTestService(t)
	ghost, err := svc.Tokens().Issue(&models.User{ID: 42, Username: "ghost"})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), ghost)
	require.Error(t, err)
	appErr, _ := apperror.FromError(err)
	assert.Equal(t, 401, appErr.StatusCode())
}
