package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"personen-api/internal/service"
)

func protectedRouter(tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokens), func(c *gin.Context) {
		username, ok := AuthUsername(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, username)
	})
	return r
}

func TestAuthMiddlewareAllowsValidToken(t *testing.T) {
	tokens := service.NewTokenService("secret", 1800*time.Second)
	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice" {
		t.Fatalf("expected resolved identity alice, got %q", rec.Body.String())
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	tokens := service.NewTokenService("secret", 1800*time.Second)
	r := protectedRouter(tokens)

	// No header, a bare scheme, and an empty second part are all the same
	// missing-token case.
	for _, header := range []string{"", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddlewareIgnoresSchemeWord(t *testing.T) {
	// The token is whatever follows the first space; the scheme word is
	// never inspected.
	tokens := service.NewTokenService("secret", 1800*time.Second)
	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+token)
	rec := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	tokens := service.NewTokenService("secret", 1800*time.Second)
	foreign := service.NewTokenService("other-secret", 1800*time.Second)
	token, err := foreign.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	tokens := service.NewTokenService("secret", 1800*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
