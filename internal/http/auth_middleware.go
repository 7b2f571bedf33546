package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"personen-api/internal/service"
)

const authUsernameKey = "auth_username"

// AuthMiddleware enforces the bearer token on protected routes. The
// Authorization header is split on spaces and the second part is the token;
// a header with fewer than two parts counts as a missing token (401), a
// token that fails signature or expiry checks is rejected with 403. The
// check is pure in-memory signature verification, no I/O.
func AuthMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) < 2 || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Kein Token",
				"status":  http.StatusUnauthorized,
			})
			return
		}

		username, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Ungültiger Token",
				"status":  http.StatusForbidden,
			})
			return
		}

		c.Set(authUsernameKey, username)
		c.Next()
	}
}

// AuthUsername returns the identity resolved by AuthMiddleware.
func AuthUsername(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUsernameKey)
	if !ok {
		return "", false
	}
	username, ok := val.(string)
	return username, ok
}
