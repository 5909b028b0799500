package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
)

// TokenConfig configures JWTManager.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// tokenClaims is the signed payload: sub carries the user id, type carries
// the access/refresh discriminator.
type tokenClaims struct {
	Type domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// JWTManager implements ports.TokenManager with an HMAC signing method.
type JWTManager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(cfg TokenConfig) (*JWTManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: empty secret")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported algorithm %q", alg)
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &JWTManager{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token of the given type for userID, expiring after the
// configured lifetime for that type.
func (m *JWTManager) Issue(userID int64, typ domain.TokenType) (string, error) {
	var ttl time.Duration
	switch typ {
	case domain.TokenTypeAccess:
		ttl = m.accessTTL
	case domain.TokenTypeRefresh:
		ttl = m.refreshTTL
	default:
		return "", fmt.Errorf("jwt: unknown token type %q", typ)
	}

	now := m.now()
	claims := tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Verify checks signature, expiry, subject and type, and returns the user id.
// Every failure is reported as domain.ErrInvalidToken.
func (m *JWTManager) Verify(token string, expected domain.TokenType) (int64, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return 0, domain.ErrInvalidToken
	}

	if claims.Type != expected {
		return 0, domain.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, domain.ErrInvalidToken
	}

	return userID, nil
}
