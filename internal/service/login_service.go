package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"personen-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
)

// LoginService checks a username/password pair against the user table and
// mints a session token on success.
type LoginService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	tokens    *TokenService
	limiter   LoginRateLimiter
	plaintext bool
}

// NewLoginService wires the credential check. A nil limiter disables
// throttling entirely.
func NewLoginService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, limiter LoginRateLimiter, plaintextPasswords bool) *LoginService {
	return &LoginService{
		logger:    logger,
		users:     users,
		tokens:    tokens,
		limiter:   limiter,
		plaintext: plaintextPasswords,
	}
}

// Login verifies the credentials and returns a signed token bound to the
// username. Credential failures and datastore failures stay distinguishable
// for the handler via errors.Is.
func (s *LoginService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if s.limiter != nil && s.limiter.Blocked(username) {
		s.logger.Warn("login throttled", zap.String("username", username))
		return "", ErrRateLimited
	}

	if err := s.authenticate(ctx, username, password); err != nil {
		// Only genuine credential failures feed the limiter; datastore
		// errors do not burn attempts.
		if s.limiter != nil && errors.Is(err, ErrInvalidCredentials) {
			s.limiter.RecordFailure(username)
		}
		return "", err
	}
	if s.limiter != nil {
		s.limiter.Reset(username)
	}

	return s.tokens.Issue(username)
}

func (s *LoginService) authenticate(ctx context.Context, username, password string) error {
	if s.plaintext {
		// Compatibility mode: exact match of both columns in one query.
		_, err := s.users.FindByCredentials(ctx, username, password)
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
