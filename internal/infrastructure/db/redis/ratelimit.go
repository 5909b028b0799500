package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	rateLimitPrefix  = "ratelimit"
	rateLimitTimeout = 500 * time.Millisecond
)

// RateLimitStore is a fixed-window counter shared by every API replica. It
// satisfies echo's middleware.RateLimiterStore.
//
// Key format: ratelimit:<scope>:<identifier>:<window_start_unix>
type RateLimitStore struct {
	client redis.Cmdable
	scope  string
	limit  int64
	window time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimitStore allows limit requests per identifier in each window.
func NewRateLimitStore(client redis.Cmdable, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitStore{
		client: client,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Allow counts the request and reports whether it is within the limit. Redis
// failures let the request through and return the error for logging.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitTimeout)
	defer cancel()

	key := s.key(identifier, s.now())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limit check failed, allowing request")
		return true, fmt.Errorf("rate limit: %w", err)
	}

	return incr.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string, now time.Time) string {
	start := now.Truncate(s.window).Unix()
	return fmt.Sprintf("%s:%s:%s:%d", rateLimitPrefix, s.scope, identifier, start)
}
