package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging/loggingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStorage_BadURL(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "mysql://nope", loggingtest.NewDiscard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

// TestRedisStorage_RoundTrip runs against a live server named by
// TEST_REDIS_URL, e.g. redis://localhost:6379/15.
func TestRedisStorage_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	s, err := NewRedisStorage(context.Background(), url, loggingtest.NewDiscard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Reset())

	got, err := s.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("sid", []byte("payload"), time.Minute))
	got, err = s.Get("sid")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	require.NoError(t, s.Delete("sid"))
	got, err = s.Get("sid")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("a", []byte("1"), time.Minute))
	require.NoError(t, s.Set("b", []byte("2"), time.Minute))
	require.NoError(t, s.Reset())
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
