package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/comp0022/film-analytics-api/internal/api/metrics"
	"github.com/comp0022/film-analytics-api/internal/core/domain"
	"github.com/comp0022/film-analytics-api/internal/core/ports"
	"github.com/comp0022/film-analytics-api/pkg/logger"
)

// dummyPassword is hashed at construction and compared against when a login
// names an unknown user, so both login failure paths pay for one bcrypt
// comparison.
const dummyPassword = "film-analytics-timing-guard"

// AuthService implements registration, login, token refresh and access token
// authentication.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenManager
	log    zerolog.Logger

	dummyHash string
}

// NewAuthService hashes the dummy password up front so no login request pays
// for it. log is used when the request context carries no logger.
func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenManager, log zerolog.Logger) *AuthService {
	s := &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
	hash, err := hasher.Hash(dummyPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to prepare dummy password hash")
	}
	s.dummyHash = hash
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (user *domain.User, err error) {
	defer func() { observe("register", err) }()

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.logger(ctx).Info().Str("username", in.Username).Msg("registration rejected: username taken")
		}
		return nil, err
	}

	s.logger(ctx).Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (pair *domain.TokenPair, err error) {
	defer func() { observe("login", err) }()

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger(ctx).Warn().Str("username", username).Msg("login failed")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger(ctx).Warn().Str("username", username).Msg("login failed")
		return nil, domain.ErrInvalidCredentials
	}

	return s.issuePair(user.ID)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair *domain.TokenPair, err error) {
	defer func() { observe("refresh", err) }()

	user, err := s.resolve(ctx, refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return s.issuePair(user.ID)
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.resolve(ctx, accessToken, domain.TokenTypeAccess)
}

// resolve verifies a token of the expected type and loads its subject. A
// subject that no longer exists is an invalid token.
func (s *AuthService) resolve(ctx context.Context, token string, typ domain.TokenType) (*domain.User, error) {
	userID, err := s.tokens.Verify(token, typ)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}
	return user, nil
}

func (s *AuthService) issuePair(userID int64) (*domain.TokenPair, error) {
	access, err := s.tokens.Issue(userID, domain.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(userID, domain.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.BearerScheme,
	}, nil
}

// logger returns the request-scoped logger, which carries the request id.
func (s *AuthService) logger(ctx context.Context) *zerolog.Logger {
	l := logger.FromContextOr(ctx, s.log)
	return &l
}

func observe(operation string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserExists):
		result = "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		result = "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		result = "invalid_token"
	default:
		result = "error"
	}
	metrics.AuthRequestsTotal.WithLabelValues(operation, result).Inc()
}
