package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/user/emojicringe-go/config"
	"github.com/user/emojicringe-go/db"
	"github.com/user/emojicringe-go/logging"
	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/seed"
	"github.com/user/emojicringe-go/server"
	"github.com/user/emojicringe-go/store"
	"github.com/user/emojicringe-go/store/postgres"
	"github.com/user/emojicringe-go/store/sqlite"
)

func setup() (*config.AppConfig, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Log), nil
}

// openStore connects to the configured engine and brings its schema up to date.
// PostgreSQL is retried a bounded number of times before giving up.
func openStore(ctx context.Context, cfg *config.AppConfig, logger logrus.FieldLogger) (store.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(); err != nil {
			_ = st.Close()
			return nil, err
		}
		logger.WithField("path", cfg.Database.SQLitePath).Info("using sqlite store")
		return st, nil

	default:
		pool, err := db.ConnectWithRetry(ctx, logger, cfg.Database.ConnectAttempts, cfg.Database.ConnectDelay,
			func(ctx context.Context) (*pgxpool.Pool, error) {
				return db.NewPool(ctx, cfg.Database)
			})
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(cfg.Database.URL); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("using postgres store")
		return postgres.New(pool), nil
	}
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.WithError(err).Warn("closing store")
		}
	}()

	return server.New(cfg, st, logger).Run(ctx)
}

func migrateOnly(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	st, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("schema is up to date")
	return st.Close()
}

func seedDemo(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	st, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = seed.Run(c.Context, st, logger, c.Int("bcrypt-cost"))
	return err
}

func promote(c *cli.Context) error {
	username := c.Args().First()
	if username == "" {
		return cli.Exit("usage: promote <username>", 2)
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	st, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	user, err := st.Users().FindByUsername(c.Context, username)
	if err != nil {
		return fmt.Errorf("find %s: %w", username, err)
	}

	role := models.RoleAdmin
	if c.Bool("revoke") {
		role = models.RoleUser
	}
	if err := st.Users().SetRole(c.Context, user.ID, role); err != nil {
		return fmt.Errorf("set role of %s: %w", username, err)
	}
	logger.WithFields(logrus.Fields{"username": username, "role": role}).Info("role updated")
	return nil
}
