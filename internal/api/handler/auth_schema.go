package handler

import (
	"time"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// errorResponse documents the {"detail": ...} envelope rendered by the
// central error handler.
type errorResponse struct {
	Detail string `json:"detail" example:"Invalid or expired token"`
}

// --- Request types ---

// Password max is bcrypt's input limit in bytes.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"  example:"alice"`
	Password string `json:"password" validate:"required,min=6,max=72"  example:"s3cret!"`
	Email    string `json:"email"    validate:"required,max=255"       example:"alice@example.com"`
}

// loginRequest only requires the fields to be present. Empty values go to
// the service and fail like any other wrong credentials.
type loginRequest struct {
	Username *string `json:"username" validate:"required" example:"alice"`
	Password *string `json:"password" validate:"required" example:"s3cret!"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// --- Response types ---

type userResponse struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"bearer"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toTokenResponse(p *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
	}
}
