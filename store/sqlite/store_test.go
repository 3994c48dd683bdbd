package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &models.User{
		Username:       username,
		Email:          username + "@Example.com",
		HashedPassword: "hash",
	})
	require.NoError(t, err)
	return u
}

func TestUsers_CreateAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createUser(t, s, "alice")
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "alice@example.com", u.Email)

	byEmail, err := s.Users().FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := s.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.Users().FindByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_Duplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createUser(t, s, "alice")

	_, err := s.Users().Create(ctx, &models.User{Username: "alice", Email: "other@example.com", HashedPassword: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)

	_, err = s.Users().Create(ctx, &models.User{Username: "alice2", Email: "alice@example.com", HashedPassword: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	exists, err := s.Users().ExistsByUsernameOrEmail(ctx, "nobody", "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Users().ExistsByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUsers_ListAndSetRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createUser(t, s, "alice")
	createUser(t, s, "bob")

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	require.NoError(t, s.Users().SetRole(ctx, a.ID, models.RoleAdmin))
	got, err := s.Users().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	assert.ErrorIs(t, s.Users().SetRole(ctx, 999, models.RoleAdmin), store.ErrNotFound)
}

func createCombo(t *testing.T, s *Store, owner *models.User, emojis string, at time.Time) *models.EmojiCombo {
	t.Helper()
	c, err := s.Combos().Create(context.Background(), &models.EmojiCombo{
		Emojis:      emojis,
		Description: "desc " + emojis,
		CreatedBy:   owner.ID,
		Username:    owner.Username,
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	require.NoError(t, err)
	return c
}

func TestCombos_ListOrderAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := createCombo(t, s, alice, "😀", base)
	tieA := createCombo(t, s, bob, "😂", base.Add(time.Minute))
	tieB := createCombo(t, s, alice, "🔥", base.Add(time.Minute))

	page, err := s.Combos().List(ctx, store.ListParams{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Combos, 2)
	assert.Equal(t, tieB.ID, page.Combos[0].ID)
	assert.Equal(t, tieA.ID, page.Combos[1].ID)

	page, err = s.Combos().List(ctx, store.ListParams{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Combos, 1)
	assert.Equal(t, first.ID, page.Combos[0].ID)

	page, err = s.Combos().List(ctx, store.ListParams{Offset: 0, Limit: 10, CreatedBy: &alice.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, c := range page.Combos {
		assert.Equal(t, alice.ID, c.CreatedBy)
	}

	mine, err := s.Combos().ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tieA.ID, mine[0].ID)
}

func TestCombos_UpdateIsOwnerScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	c := createCombo(t, s, alice, "😀", time.Now().Add(-time.Hour))

	desc := "updated"
	_, err := s.Combos().Update(ctx, c.ID, bob.ID, models.ComboPatch{Description: &desc})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Combos().Update(ctx, c.ID+50, alice.ID, models.ComboPatch{Description: &desc})
	assert.ErrorIs(t, err, store.ErrNotFound)

	updated, err := s.Combos().Update(ctx, c.ID, alice.ID, models.ComboPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, "😀", updated.Emojis)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
}

func TestCombos_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	c := createCombo(t, s, alice, "😀", time.Now())

	assert.ErrorIs(t, s.Combos().Delete(ctx, c.ID, &bob.ID), store.ErrNotFound)
	require.NoError(t, s.Combos().Delete(ctx, c.ID, &alice.ID))
	assert.ErrorIs(t, s.Combos().Delete(ctx, c.ID, nil), store.ErrNotFound)

	other := createCombo(t, s, alice, "🔥", time.Now())
	require.NoError(t, s.Combos().Delete(ctx, other.ID, nil))
	_, err := s.Combos().FindByID(ctx, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
