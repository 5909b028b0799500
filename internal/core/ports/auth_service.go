package ports

import (
	"context"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	// Authenticate resolves an access token to the user it was issued for.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// PasswordHasher produces self-describing salted hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenManager issues and verifies signed, expiring, typed tokens.
type TokenManager interface {
	Issue(userID int64, typ domain.TokenType) (string, error)
	Verify(token string, expected domain.TokenType) (int64, error)
}
