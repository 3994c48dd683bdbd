package db

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestConnectWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := ConnectWithRetry(context.Background(), quietLogger(), 5, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "pool", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "pool", got)
	assert.Equal(t, 3, calls)
}

func TestConnectWithRetry_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	_, err := ConnectWithRetry(context.Background(), quietLogger(), 5, time.Millisecond, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConnectWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := ConnectWithRetry(ctx, quietLogger(), 5, time.Hour, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
