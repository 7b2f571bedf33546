package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies the signed session tokens handed out at
// login. Validity is purely signature plus expiry; nothing is persisted and
// nothing can be revoked before it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// SessionClaims is the token payload: the bound username plus the standard
// issued-at/expiry claims.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

const defaultTokenTTL = 1800 * time.Second

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token bound to username, expiring ttl after issuance.
func (s *TokenService) Issue(username string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded username. A
// token presented exactly at its expiry instant counts as expired.
func (s *TokenService) Verify(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrTokenMissing
	}
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if claims.ExpiresAt == nil || !time.Now().UTC().Before(claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}
	if strings.TrimSpace(claims.Username) == "" {
		return "", ErrTokenInvalid
	}

	return claims.Username, nil
}
