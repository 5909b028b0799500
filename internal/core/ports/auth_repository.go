package ports

import (
	"context"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// UserRepository defines persistence for dashboard accounts.
type UserRepository interface {
	// Create inserts the user and returns the stored record. A taken username
	// yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
