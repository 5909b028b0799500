// Command api serves the film analytics HTTP API.
//
//	@title						COMP0022 Film Analytics API
//	@version					0.1.0
//	@description				Backend API for the Film Analytics Dashboard
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/comp0022/film-analytics-api/internal/api"
	"github.com/comp0022/film-analytics-api/internal/api/metrics"
	"github.com/comp0022/film-analytics-api/internal/core/ports"
	"github.com/comp0022/film-analytics-api/internal/core/service"
	"github.com/comp0022/film-analytics-api/internal/infrastructure/config"
	"github.com/comp0022/film-analytics-api/internal/infrastructure/db/postgres"
	"github.com/comp0022/film-analytics-api/internal/infrastructure/db/redis"
	"github.com/comp0022/film-analytics-api/pkg/logger"
)

const (
	serviceName     = "film-analytics-api"
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs(),
		Service: serviceName,
	})
	log.Info().Str("env", cfg.Env).Str("level", cfg.LogLevel).Msg("starting")
	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("SECRET_KEY is the built-in default; set it before deploying")
	}

	initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	pool := openDatabase(initCtx, cfg, log)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	// Validated by config.Load.
	proxies, _ := cfg.TrustedProxyRanges()

	deps := api.Deps{
		Log:            log,
		DB:             pool,
		AuthRateLimit:  cfg.AuthRateLimit,
		CORSOrigins:    cfg.AllowedOrigins(),
		TrustedProxies: proxies,
	}

	redisCfg := redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if redisCfg.Enabled() {
		client, err := redis.Connect(initCtx, redisCfg)
		if err != nil {
			log.Warn().Err(err).Str("addr", redisCfg.Addr).Msg("redis unavailable, using in-memory rate limiting")
		} else {
			defer func() { _ = client.Close() }()
			deps.RateLimitStore = redis.NewRateLimitStore(client, "auth", cfg.AuthRateLimit, time.Minute, log)
			deps.Redis = redis.NewChecker(client)
			log.Info().Str("addr", redisCfg.Addr).Msg("redis connected")
		}
	}
	cancel()

	authService, err := newAuthService(cfg, pool, log)
	if err != nil {
		return err
	}
	deps.AuthService = authService

	e := api.NewRouter(deps)
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	return serve(ctx, e, ":"+cfg.Port, log)
}

// openDatabase connects and migrates. On failure it returns an
// uninitialised pool so the API still starts in degraded mode.
func openDatabase(ctx context.Context, cfg *config.Config, log zerolog.Logger) *postgres.Pool {
	pool, err := postgres.Open(ctx, postgres.Config{
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		Name:           cfg.DB.Name,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		SSLMode:        cfg.DB.SSLMode,
		MinConns:       cfg.DB.PoolMin,
		MaxConns:       cfg.DB.PoolMax,
		ConnectTimeout: cfg.DB.ConnectTimeout,
	})
	if err != nil {
		log.Warn().Err(err).Str("host", cfg.DB.Host).Msg("database unavailable, starting degraded")
		return postgres.NewPool(nil)
	}

	if err := pool.Migrate(ctx); err != nil {
		log.Warn().Err(err).Msg("database migration failed")
	}
	if err := metrics.RegisterDBStats(pool.DB(), cfg.DB.Name); err != nil {
		log.Warn().Err(err).Msg("register database metrics")
	}

	log.Info().Str("host", cfg.DB.Host).Str("database", cfg.DB.Name).Msg("database connected")
	return pool
}

func newAuthService(cfg *config.Config, pool *postgres.Pool, log zerolog.Logger) (ports.AuthService, error) {
	tokens, err := service.NewJWTManager(service.TokenConfig{
		Secret:     cfg.JWT.SecretKey,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	})
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(
		postgres.NewUserRepository(pool),
		service.NewBcryptHasher(cfg.JWT.BcryptCost),
		tokens,
		log,
	), nil
}

func serve(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
