package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Resolver es la única dependencia del endpoint sin estado.
type Resolver interface {
	Resolve(ctx context.Context, message, apiKey string) string
}

// SymptomHandler expone el resolver de síntomas sin conversación asociada.
type SymptomHandler struct {
	logger   *zap.Logger
	resolver Resolver
	apiKey   string
}

func NewSymptomHandler(logger *zap.Logger, resolver Resolver, apiKey string) *SymptomHandler {
	return &SymptomHandler{
		logger:   logger,
		resolver: resolver,
		apiKey:   apiKey,
	}
}

// Resolve maneja POST /symptoms/resolve. Un mensaje vacío recibe el texto de redirección.
func (h *SymptomHandler) Resolve(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resolve request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reply := h.resolver.Resolve(c.Request.Context(), req.Message, h.apiKey)
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// Health maneja GET /healthz.
func (h *SymptomHandler) Health(c *gin.Context) {
	generator := "remote"
	if strings.TrimSpace(h.apiKey) == "" {
		generator = "offline"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "generator": generator})
}
