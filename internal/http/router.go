package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"personen-api/internal/service"
)

const requestIDHeader = "X-Request-ID"

// NewRouter configures the Gin router with middlewares and routes. Login and
// the health root are open; every /person route sits behind the bearer-token
// middleware.
func NewRouter(
	logger *zap.Logger,
	loginH *LoginHandler,
	personH *PersonHandler,
	tokens *service.TokenService,
) *gin.Engine {
	r := gin.New()

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API läuft")
	})

	user := r.Group("/user")
	user.POST("/login", loginH.Login)

	person := r.Group("/person", AuthMiddleware(tokens))
	person.POST("", personH.Create)
	person.GET("", personH.List)
	person.GET("/:id", personH.Get)
	person.PUT("/:id", personH.Update)
	person.DELETE("/:id", personH.Delete)

	return r
}

// requestIDMiddleware tags each request with an id, reusing the caller's if
// one is supplied.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware logs one structured line per request.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
