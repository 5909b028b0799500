package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/comp0022/film-analytics-api/internal/api/metrics"
)

// RateLimit limits requests per client IP to perMinute.
//
// store is normally the Redis-backed store shared by every replica. When it
// is nil an in-process token bucket is used instead, refilling at perMinute
// per minute with a burst of perMinute.
//
// Rejections answer 429 regardless of what the request contained, so the
// limiter cannot be used to learn whether a username exists.
func RateLimit(store echomiddleware.RateLimiterStore, perMinute int) echo.MiddlewareFunc {
	if perMinute < 1 {
		perMinute = 1
	}
	if store == nil {
		store = echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / time.Minute.Seconds()),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		})
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, err error) error {
			metrics.RateLimitedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded").SetInternal(err)
		},
	})
}
