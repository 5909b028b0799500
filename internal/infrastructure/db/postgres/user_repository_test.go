package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

var createdAt = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestUserRepository_Create_Success(t *testing.T) {
	p, mock := newMockPool(t)
	repo := NewUserRepository(p)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("alice", "alice@example.com", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "created_at"}).
			AddRow(int64(7), "alice", "alice@example.com", createdAt))
	mock.ExpectCommit()

	got, err := repo.Create(context.Background(), &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), got.ID)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, createdAt, got.CreatedAt)
	require.Empty(t, got.PasswordHash, "insert must not echo the hash back")
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	p, mock := newMockPool(t)
	repo := NewUserRepository(p)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "app_users_username_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_Create_OtherConstraintIsNotConflict(t *testing.T) {
	p, mock := newMockPool(t)
	repo := NewUserRepository(p)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value in column \"email\""})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUserExists)
	require.ErrorContains(t, err, "insert user")
}

func TestUserRepository_Create_NoRowReturned(t *testing.T) {
	p, mock := newMockPool(t)
	repo := NewUserRepository(p)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "created_at"}))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.ErrorIs(t, err, domain.ErrUserNotCreated)
}

func TestUserRepository_FindByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		p, mock := newMockPool(t)
		repo := NewUserRepository(p)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "password_hash", "created_at"}).
				AddRow(int64(7), "alice", "alice@example.com", "$2a$10$hash", createdAt))
		mock.ExpectCommit()

		got, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.Equal(t, int64(7), got.ID)
		require.Equal(t, "$2a$10$hash", got.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		p, mock := newMockPool(t)
		repo := NewUserRepository(p)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "password_hash", "created_at"}))
		mock.ExpectRollback()

		_, err := repo.FindByUsername(context.Background(), "ghost")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		p, mock := newMockPool(t)
		repo := NewUserRepository(p)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WillReturnError(errors.New("db down"))
		mock.ExpectRollback()

		_, err := repo.FindByUsername(context.Background(), "alice")
		require.ErrorContains(t, err, "find user by username: db down")
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		p, mock := newMockPool(t)
		repo := NewUserRepository(p)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "created_at"}).
				AddRow(int64(7), "alice", "alice@example.com", createdAt))
		mock.ExpectCommit()

		got, err := repo.FindByID(context.Background(), 7)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)
		require.Empty(t, got.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		p, mock := newMockPool(t)
		repo := NewUserRepository(p)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDSQL)).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.FindByID(context.Background(), 99)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_PoolNotInitialised(t *testing.T) {
	repo := NewUserRepository(NewPool(nil))

	_, err := repo.FindByID(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrDatabaseUnavailable)

	_, err = repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.ErrorIs(t, err, domain.ErrDatabaseUnavailable)
}
