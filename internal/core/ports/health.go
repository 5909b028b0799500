package ports

import "context"

// HealthChecker reports whether a backing dependency (the database, Redis)
// answers a trivial request. It never returns an error.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}
