package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personen-api/internal/service"
)

// LoginHandler serves POST /user/login.
type LoginHandler struct {
	logger *zap.Logger
	login  *service.LoginService
	legacy bool
}

func NewLoginHandler(logger *zap.Logger, login *service.LoginService, legacyStatusCodes bool) *LoginHandler {
	return &LoginHandler{
		logger: logger,
		login:  login,
		legacy: legacyStatusCodes,
	}
}

// Login checks the credentials and replies 201 with a fresh token. Bad
// credentials answer 401, or the original's 409 in legacy mode. Datastore
// failures answer a fixed 500 body; the driver error goes to the log only.
func (h *LoginHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Ungültige Daten",
			"status":  http.StatusBadRequest,
		})
		return
	}

	token, err := h.login.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status := http.StatusUnauthorized
		if h.legacy {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"message": "Falsche Login-Daten", "status": status})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message": "Zu viele Login-Versuche",
			"status":  http.StatusTooManyRequests,
		})
	case err != nil:
		h.logger.Error("login query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Datenbankfehler",
			"status":  http.StatusInternalServerError,
		})
	default:
		c.JSON(http.StatusCreated, gin.H{
			"token":   token,
			"status":  http.StatusCreated,
			"message": "Erfolgreich eingeloggt",
		})
	}
}
