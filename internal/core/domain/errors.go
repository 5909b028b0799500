package domain

import "errors"

var (
	ErrUserExists     = errors.New("username already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserNotCreated = errors.New("failed to create user")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrNotImplemented      = errors.New("not implemented")
)
