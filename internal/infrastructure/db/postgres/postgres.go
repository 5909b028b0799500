// Package postgres owns the bounded connection pool, the scoped transaction
// helper every query runs through, schema migrations, and the Postgres-backed
// user repository.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

const (
	defaultConnectTimeout = 5 * time.Second
	healthTimeout         = 3 * time.Second
)

// ErrPoolNotInitialized is returned by every query when the process started
// without a database connection.
var ErrPoolNotInitialized = fmt.Errorf("postgres: pool is not initialised: %w", domain.ErrDatabaseUnavailable)

// Config captures the settings required to open the pool.
type Config struct {
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSLMode        string
	MinConns       int32
	MaxConns       int32
	ConnectTimeout time.Duration
}

// DSN renders the config as a postgres:// URL.
func (c Config) DSN() string {
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// DBTX is the subset of database/sql used by repositories. *sql.DB and
// *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Pool is the process-wide connection pool. A Pool without a database is
// valid: every call on it fails with ErrPoolNotInitialized.
type Pool struct {
	db  *sql.DB
	pgx *pgxpool.Pool
}

// NewPool wraps an already opened database. db may be nil.
func NewPool(db *sql.DB) *Pool {
	return &Pool{db: db}
}

// Open creates a pgx pool bounded by MinConns/MaxConns, exposes it through
// database/sql, and verifies connectivity with a ping.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	pcfg.ConnConfig.ConnectTimeout = timeout

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pp, err := pgxpool.NewWithConfig(connectCtx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pp)
	db.SetMaxOpenConns(int(pcfg.MaxConns))

	if err := db.PingContext(connectCtx); err != nil {
		_ = db.Close()
		pp.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &Pool{db: db, pgx: pp}, nil
}

// Initialized reports whether the pool holds a database.
func (p *Pool) Initialized() bool {
	return p != nil && p.db != nil
}

// DB returns the underlying database, or nil when uninitialised.
func (p *Pool) DB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.db
}

// Close releases every connection. Safe on an uninitialised pool.
func (p *Pool) Close() error {
	if !p.Initialized() {
		return nil
	}
	err := p.db.Close()
	if p.pgx != nil {
		p.pgx.Close()
	}
	p.db, p.pgx = nil, nil
	return err
}

// WithTx acquires a connection, begins a transaction, runs fn with it, and
// commits when fn returns nil. The transaction is rolled back when fn returns
// an error or panics; panics are rethrown. The connection goes back to the
// pool on every path.
//
//	err := pool.WithTx(ctx, func(ctx context.Context, tx postgres.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func (p *Pool) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	if !p.Initialized() {
		return ErrPoolNotInitialized
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}

// Healthy runs SELECT 1 and reports the outcome. It never returns an error.
func (p *Pool) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	err := p.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		var one int
		return tx.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
	return err == nil
}
