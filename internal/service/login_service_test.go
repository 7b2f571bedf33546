package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"personen-api/internal/domain"
	"personen-api/internal/repository"
)

type mockUserRepo struct {
	users map[string]string // username -> stored password column
	err   error
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	if m.err != nil {
		return domain.User{}, m.err
	}
	password, ok := m.users[username]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return domain.User{Username: username, Password: password}, nil
}

func (m *mockUserRepo) FindByCredentials(_ context.Context, username, password string) (domain.User, error) {
	if m.err != nil {
		return domain.User{}, m.err
	}
	stored, ok := m.users[username]
	if !ok || stored != password {
		return domain.User{}, repository.ErrUserNotFound
	}
	return domain.User{Username: username, Password: stored}, nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestLoginServiceIssuesToken(t *testing.T) {
	repo := &mockUserRepo{users: map[string]string{"alice": hashPassword(t, "secret")}}
	tokens := NewTokenService("secret", 1800*time.Second)
	svc := NewLoginService(zap.NewNop(), repo, tokens, nil, false)

	token, err := svc.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	username, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected token bound to alice, got %q", username)
	}
}

func TestLoginServiceRejectsBadCredentials(t *testing.T) {
	repo := &mockUserRepo{users: map[string]string{"alice": hashPassword(t, "secret")}}
	svc := NewLoginService(zap.NewNop(), repo, NewTokenService("secret", 1800*time.Second), nil, false)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "bob", "secret"},
		{"empty username", "", "secret"},
		{"empty password", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.username, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginServicePlaintextMode(t *testing.T) {
	repo := &mockUserRepo{users: map[string]string{"alice": "secret"}}
	tokens := NewTokenService("secret", 1800*time.Second)
	svc := NewLoginService(zap.NewNop(), repo, tokens, nil, true)

	if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginServicePropagatesDatastoreError(t *testing.T) {
	repo := &mockUserRepo{err: errors.New("connection refused")}
	svc := NewLoginService(zap.NewNop(), repo, NewTokenService("secret", 1800*time.Second), nil, false)

	_, err := svc.Login(context.Background(), "alice", "secret")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected datastore error to stay distinguishable, got %v", err)
	}
}

func TestLoginServiceRateLimited(t *testing.T) {
	repo := &mockUserRepo{users: map[string]string{"alice": hashPassword(t, "secret")}}
	limiter := NewMemoryLoginRateLimiter(time.Minute, 2)
	svc := NewLoginService(zap.NewNop(), repo, NewTokenService("secret", 1800*time.Second), limiter, false)

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	if _, err := svc.Login(context.Background(), "alice", "secret"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLoginServiceSuccessDoesNotConsumeAttempts(t *testing.T) {
	repo := &mockUserRepo{users: map[string]string{"alice": hashPassword(t, "secret")}}
	limiter := NewMemoryLoginRateLimiter(time.Minute, 2)
	svc := NewLoginService(zap.NewNop(), repo, NewTokenService("secret", 1800*time.Second), limiter, false)

	// Repeated successful logins must never trip the limiter.
	for i := 0; i < 5; i++ {
		if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
			t.Fatalf("successful login %d: %v", i+1, err)
		}
	}

	// A success after a failure clears the counter.
	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials after reset, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("counter should have been cleared by the earlier success: %v", err)
	}
}

func TestLoginServiceDatastoreErrorDoesNotCountAsFailure(t *testing.T) {
	repo := &mockUserRepo{users: map[string]string{"alice": hashPassword(t, "secret")}}
	limiter := NewMemoryLoginRateLimiter(time.Minute, 1)
	svc := NewLoginService(zap.NewNop(), repo, NewTokenService("secret", 1800*time.Second), limiter, false)

	repo.err = errors.New("connection refused")
	if _, err := svc.Login(context.Background(), "alice", "secret"); err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected datastore error, got %v", err)
	}

	repo.err = nil
	if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("datastore error must not burn an attempt: %v", err)
	}
}
