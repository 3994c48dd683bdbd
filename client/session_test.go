package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartsExpired(t *testing.T) {
	s := NewSession(func(context.Context, string) (string, error) { return "x", nil })
	assert.Equal(t, StateExpired, s.State())

	_, err := s.Token(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = s.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSession_SingleRefreshReleasesAllWaiters(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	s := NewSession(func(_ context.Context, stale string) (string, error) {
		calls.Add(1)
		assert.Equal(t, "old", stale)
		<-release
		return "new", nil
	})
	s.Set("old")

	const n = 8
	results := make(chan string, 2*n+1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		tok, err := s.Refresh(context.Background(), "old")
		assert.NoError(t, err)
		results <- tok
	}()
	require.Eventually(t, func() bool { return s.State() == StateRefreshing }, time.Second, time.Millisecond)

	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tok, err := s.Refresh(context.Background(), "old")
			assert.NoError(t, err)
			results <- tok
		}()
		go func() {
			defer wg.Done()
			tok, err := s.Token(context.Background())
			assert.NoError(t, err)
			results <- tok
		}()
	}

	close(release)
	wg.Wait()
	close(results)

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, StateValid, s.State())
	count := 0
	for tok := range results {
		assert.Equal(t, "new", tok)
		count++
	}
	assert.Equal(t, 2*n+1, count)
}

func TestSession_StaleRefreshReturnsCurrentToken(t *testing.T) {
	var calls atomic.Int32
	s := NewSession(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "newer", nil
	})
	s.Set("current")

	tok, err := s.Refresh(context.Background(), "older")
	require.NoError(t, err)
	assert.Equal(t, "current", tok)
	assert.Zero(t, calls.Load())
}

func TestSession_FailedRefreshExpires(t *testing.T) {
	boom := errors.New("rejected")
	s := NewSession(func(context.Context, string) (string, error) { return "", boom })
	s.Set("old")

	_, err := s.Refresh(context.Background(), "old")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateExpired, s.State())

	_, err = s.Token(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSession_ClearDuringRefreshWins(t *testing.T) {
	release := make(chan struct{})
	s := NewSession(func(context.Context, string) (string, error) {
		<-release
		return "new", nil
	})
	s.Set("old")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Refresh(context.Background(), "old")
	}()
	require.Eventually(t, func() bool { return s.State() == StateRefreshing }, time.Second, time.Millisecond)

	s.Clear()
	close(release)
	<-done
	assert.Equal(t, StateExpired, s.State())
}

func TestSession_WaiterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := NewSession(func(context.Context, string) (string, error) {
		<-release
		return "new", nil
	})
	s.Set("old")

	go func() { _, _ = s.Refresh(context.Background(), "old") }()
	require.Eventually(t, func() bool { return s.State() == StateRefreshing }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Token(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "valid", StateValid.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "expired", StateExpired.String())
}
