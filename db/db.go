// Package db provides PostgreSQL connectivity: the pgx connection pool, the
// bounded start-up retry loop and schema migrations via golang-migrate.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// The postgres database driver registers the "postgres://" scheme with migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	// lib/pq is the database/sql driver migrate's postgres driver runs on.
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/config"
	"github.com/user/emojicringe-go/migrations"
)

// NewPool parses the DSN, applies pool limits and verifies the connection with a ping.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, apperror.NewConfigError("error parsing database URL", err)
	}

	poolConfig.MaxConns = int32(cfg.PoolSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError("error creating pgxpool", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError("error connecting to the database", err)
	}

	return pool, nil
}

// ConnectWithRetry calls connect up to attempts times, sleeping delay between
// failures. The last error is returned once the attempts are used up; the
// caller decides whether that is fatal. Cancelling ctx stops the loop early.
func ConnectWithRetry[T any](ctx context.Context, logger logrus.FieldLogger, attempts int, delay time.Duration, connect func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := connect(ctx)
		if err == nil {
			logger.WithField("attempt", i).Info("database connected")
			return conn, nil
		}
		lastErr = err
		logger.WithError(err).WithFields(logrus.Fields{"attempt": i, "max_attempts": attempts}).Warn("database connection attempt failed")

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

// RunMigrations applies every pending migration embedded in the migrations package.
func RunMigrations(databaseURL string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return apperror.NewMigrationError("failed to open embedded migrations", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return apperror.NewMigrationError("failed to create migrator", err)
	}
	defer func() {
		// Close errors only concern connections migrate opened for itself.
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to run migrations", err)
	}
	return nil
}
