package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/comp0022/film-analytics-api/internal/infrastructure/db/postgres/migrations"
)

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded migrations. Tables are created with IF NOT
// EXISTS so running against a database prepared by hand is a no-op.
func (p *Pool) Migrate(ctx context.Context) error {
	if !p.Initialized() {
		return ErrPoolNotInitialized
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUp(ctx, p.db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
