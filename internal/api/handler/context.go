package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/api/middleware"
	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// currentUser returns the user injected by the Auth middleware and fails fast
// when it is absent, which means the route was mounted without it.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}
