package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultSecretKey is the placeholder signing secret; startup warns when it
// is still in use.
const DefaultSecretKey = "change-me-in-production"

type Config struct {
	Port      string `env:"PORT,      default=8000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// LogPretty is unset unless LOG_PRETTY is given; see PrettyLogs.
	LogPretty *bool `env:"LOG_PRETTY, noinit"`

	// CORSOrigins is a comma-separated allow-list; see AllowedOrigins.
	CORSOrigins string `env:"CORS_ORIGINS, default=http://localhost:5173,http://localhost:3000"`

	// TrustedProxies lists the CIDRs (or bare IPs) of reverse proxies whose
	// X-Forwarded-For header is believed. Empty means the TCP peer is the client.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	// AuthRateLimit is the number of auth requests allowed per client IP per minute.
	AuthRateLimit int `env:"AUTH_RATE_LIMIT_PER_MINUTE, default=30"`

	DB    DBConfig
	JWT   JWTConfig
	Redis RedisConfig
}

type DBConfig struct {
	Host           string        `env:"DB_HOST,            default=localhost"`
	Port           int           `env:"DB_PORT,            default=5432"`
	Name           string        `env:"DB_NAME,            default=comp0022"`
	User           string        `env:"DB_USER,            default=postgres"`
	Password       string        `env:"DB_PASSWORD,        default=postgres"`
	SSLMode        string        `env:"DB_SSLMODE,         default=disable"`
	PoolMin        int32         `env:"DB_POOL_MIN,        default=2"`
	PoolMax        int32         `env:"DB_POOL_MAX,        default=10"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT, default=5s"`
}

type JWTConfig struct {
	SecretKey                string `env:"SECRET_KEY,                  default=change-me-in-production"`
	Algorithm                string `env:"ALGORITHM,                   default=HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=30"`
	RefreshTokenExpireDays   int    `env:"REFRESH_TOKEN_EXPIRE_DAYS,   default=7"`
	BcryptCost               int    `env:"BCRYPT_COST,                 default=10"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// AccessTTL is the lifetime of access tokens.
func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTTL is the lifetime of refresh tokens.
func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenExpireDays) * 24 * time.Hour
}

// AllowedOrigins splits CORSOrigins, trimming blanks around each entry.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDevelopment reports whether ENV is "development".
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}

// PrettyLogs honours LOG_PRETTY when set and otherwise enables console
// output in development only.
func (c *Config) PrettyLogs() bool {
	if c.LogPretty != nil {
		return *c.LogPretty
	}
	return c.IsDevelopment()
}

// TrustedProxyRanges parses TrustedProxies. A bare IP becomes a single-host
// range.
func (c *Config) TrustedProxyRanges() ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// UsesDefaultSecret reports whether SECRET_KEY was left at its placeholder.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.SecretKey == DefaultSecretKey
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DB.PoolMin < 0 || c.DB.PoolMax < 1 || c.DB.PoolMin > c.DB.PoolMax {
		errs = append(errs, fmt.Errorf("invalid pool bounds: min=%d max=%d", c.DB.PoolMin, c.DB.PoolMax))
	}
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	if _, ok := jwt.GetSigningMethod(c.JWT.Algorithm).(*jwt.SigningMethodHMAC); !ok {
		errs = append(errs, fmt.Errorf("unsupported ALGORITHM %q (want HS256, HS384 or HS512)", c.JWT.Algorithm))
	}
	if c.JWT.AccessTokenExpireMinutes <= 0 || c.JWT.RefreshTokenExpireDays <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.AuthRateLimit <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if _, err := c.TrustedProxyRanges(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Variables already set in the environment win
// over the .env file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
