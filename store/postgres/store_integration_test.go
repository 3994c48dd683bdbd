//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/user/emojicringe-go/config"
	"github.com/user/emojicringe-go/db"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
	"github.com/user/emojicringe-go/store/postgres"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "emoji",
				"POSTGRES_PASSWORD": "emoji",
				"POSTGRES_DB":       "emojicringe",
			},
			// The entrypoint restarts the server once after initdb.
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.BuildPostgresURL("emoji", "emoji", host, port.Port(), "emojicringe")
}

func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	dsn := startPostgres(t)
	require.NoError(t, db.RunMigrations(dsn))
	// Running twice must be a no-op.
	require.NoError(t, db.RunMigrations(dsn))

	logger := logrus.New()
	cfg := &config.DatabaseConfig{URL: dsn, PoolSize: 5}
	s, err := db.ConnectWithRetry(context.Background(), logger, 5, time.Second, func(ctx context.Context) (*postgres.Store, error) {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(p), nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	alice, err := s.Users().Create(ctx, &models.User{Username: "alice", Email: "Alice@X.com", HashedPassword: "h"})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", alice.Email)
	assert.Equal(t, models.RoleUser, alice.Role)

	bob, err := s.Users().Create(ctx, &models.User{Username: "bob", Email: "bob@x.com", HashedPassword: "h"})
	require.NoError(t, err)

	_, err = s.Users().Create(ctx, &models.User{Username: "alice", Email: "new@x.com", HashedPassword: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)
	_, err = s.Users().Create(ctx, &models.User{Username: "carol", Email: "ALICE@x.com", HashedPassword: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	var ids []int64
	for i := 0; i < 3; i++ {
		c, err := s.Combos().Create(ctx, &models.EmojiCombo{
			Emojis:      "😂🔥",
			Description: fmt.Sprintf("combo %d", i),
			CreatedBy:   alice.ID,
			Username:    alice.Username,
		})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	page, err := s.Combos().List(ctx, store.ListParams{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Combos, 2)
	assert.Equal(t, ids[2], page.Combos[0].ID)

	page, err = s.Combos().List(ctx, store.ListParams{Offset: 0, Limit: 10, CreatedBy: &bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
	assert.Empty(t, page.Combos)

	desc := "edited"
	_, err = s.Combos().Update(ctx, ids[0], bob.ID, models.ComboPatch{Description: &desc})
	assert.ErrorIs(t, err, store.ErrNotFound)
	updated, err := s.Combos().Update(ctx, ids[0], alice.ID, models.ComboPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Description)
	assert.Equal(t, "😂🔥", updated.Emojis)

	assert.ErrorIs(t, s.Combos().Delete(ctx, ids[1], &bob.ID), store.ErrNotFound)
	require.NoError(t, s.Combos().Delete(ctx, ids[1], nil))

	require.NoError(t, s.Users().SetRole(ctx, bob.ID, models.RoleAdmin))
	got, err := s.Users().FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
