// Package seed loads the demo accounts and combos used for local development.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

type demoCombo struct {
	owner       int
	emojis      string
	description string
}

var demoUsers = []string{"user1", "user2", "user3"}

var demoCombos = []demoCombo{
	{0, "😂🤣", "Laughing so hard"},
	{0, "🌟✨", "Starry night"},
	{1, "❤️💔", "Love and heartbreak"},
	{1, "🔥💦", "Fire and water"},
	{2, "🎵🎸", "Music time"},
	{2, "🍕🍔", "Junk food"},
}

// Result counts what a Run inserted.
type Result struct {
	Users  int
	Combos int
}

// Run inserts the demo users and their combos. Users that already exist are
// left alone together with their combos, so running it twice is harmless.
func Run(ctx context.Context, st store.Store, logger logrus.FieldLogger, bcryptCost int) (Result, error) {
	var res Result

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return res, fmt.Errorf("hash demo password: %w", err)
	}

	created := make([]*models.User, len(demoUsers))
	for i, name := range demoUsers {
		email := name + "@example.com"
		_, err := st.Users().FindByEmail(ctx, email)
		if err == nil {
			logger.WithField("email", email).Info("demo user exists, skipping")
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, fmt.Errorf("look up %s: %w", email, err)
		}

		user, err := st.Users().Create(ctx, &models.User{
			Username:       name,
			Email:          email,
			HashedPassword: string(hash),
		})
		if err != nil {
			return res, fmt.Errorf("create %s: %w", name, err)
		}
		created[i] = user
		res.Users++
	}

	for _, c := range demoCombos {
		owner := created[c.owner]
		if owner == nil {
			continue
		}
		if _, err := st.Combos().Create(ctx, &models.EmojiCombo{
			Emojis:      c.emojis,
			Description: c.description,
			CreatedBy:   owner.ID,
			Username:    owner.Username,
		}); err != nil {
			return res, fmt.Errorf("create combo %q: %w", c.description, err)
		}
		res.Combos++
	}

	logger.WithFields(logrus.Fields{"users": res.Users, "combos": res.Combos}).Info("database seeded")
	return res, nil
}
