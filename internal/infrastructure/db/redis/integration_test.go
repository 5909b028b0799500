//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/comp0022/film-analytics-api/internal/testinfra"
)

func TestIntegration_RateLimitStore(t *testing.T) {
	ep := testinfra.StartRedis(t)
	ctx := context.Background()

	client, err := Connect(ctx, Config{Addr: ep.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.True(t, NewChecker(client).Healthy(ctx))

	s := NewRateLimitStore(client, "auth", 3, time.Minute, zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		allowed, err := s.Allow("192.0.2.1")
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i+1)
	}
	allowed, err := s.Allow("192.0.2.1")
	require.NoError(t, err)
	require.False(t, allowed, "fourth request in the window")

	allowed, err = s.Allow("192.0.2.2")
	require.NoError(t, err)
	require.True(t, allowed, "other clients have their own counter")

	ttl, err := client.TTL(ctx, s.key("192.0.2.1", fixed)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)

	s.now = func() time.Time { return fixed.Add(time.Minute) }
	allowed, err = s.Allow("192.0.2.1")
	require.NoError(t, err)
	require.True(t, allowed, "next window resets the counter")
}
