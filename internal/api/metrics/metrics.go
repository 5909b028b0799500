// Package metrics defines and registers the custom Prometheus metrics of the
// film analytics API. HTTP request metrics come from echoprometheus; this
// package only holds what the auth subsystem and the database pool report.
//
// All metrics register with the default Prometheus registry on import.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "film_analytics"

// AuthRequestsTotal counts auth operations by outcome.
// Labels:
//   - operation: "register", "login" or "refresh"
//   - result: "success", "conflict", "invalid_credentials", "invalid_token" or "error"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PasswordHashDuration measures bcrypt cost.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and verify calls.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

// RateLimitedTotal counts requests rejected by the auth rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rate_limited_total",
		Help:      "Total number of auth requests rejected by the rate limiter.",
	},
)

// RegisterDBStats exposes database/sql pool statistics (open, in use, idle,
// wait count and duration) under db_name.
func RegisterDBStats(db *sql.DB, dbName string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, dbName))
}
