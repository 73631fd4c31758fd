package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medisense/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	symptomH *SymptomHandler,
	chatH *ChatHandler,
	tokens *service.ConversationTokenService,
	limiter service.MessageRateLimiter,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", symptomH.Health)
	r.POST("/symptoms/resolve", rateLimitMiddleware(limiter), symptomH.Resolve)

	r.POST("/conversations", chatH.CreateConversation)
	conv := r.Group("/conversations/:id", ConversationAuthMiddleware(tokens))
	conv.POST("/messages", rateLimitMiddleware(limiter), chatH.PostMessage)
	conv.GET("/messages", chatH.ListMessages)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
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
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// rateLimitMiddleware corta con 429 cuando el cliente supera el límite; sin limiter deja pasar.
func rateLimitMiddleware(limiter service.MessageRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
