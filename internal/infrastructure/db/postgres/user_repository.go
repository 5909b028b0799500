package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const (
	insertUserSQL = `INSERT INTO app_users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING user_id, username, email, created_at`

	selectUserByUsernameSQL = `SELECT user_id, username, email, password_hash, created_at
		FROM app_users WHERE username = $1`

	selectUserByIDSQL = `SELECT user_id, username, email, created_at
		FROM app_users WHERE user_id = $1`
)

// UserRepository implements ports.UserRepository on the app_users table.
type UserRepository struct {
	pool *Pool
}

func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	created := &domain.User{}
	err := r.pool.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		return tx.QueryRowContext(ctx, insertUserSQL, user.Username, user.Email, user.PasswordHash).
			Scan(&created.ID, &created.Username, &created.Email, &created.CreatedAt)
	})
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrUserExists
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.ErrUserNotCreated
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	err := r.pool.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		return tx.QueryRowContext(ctx, selectUserByUsernameSQL, username).
			Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	err := r.pool.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		return tx.QueryRowContext(ctx, selectUserByIDSQL, id).
			Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
