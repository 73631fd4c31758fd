package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medisense/internal/service"
)

const conversationClaimsKey = "conversation_claims"

// ConversationAuthMiddleware valida el token de la conversación y que coincida con :id.
func ConversationAuthMiddleware(tokens *service.ConversationTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation tokens not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := tokens.Parse(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrTokenExpired) {
				msg = "conversation expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}
		if claims.ConversationID != c.Param("id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "token does not grant access to this conversation"})
			c.Abort()
			return
		}

		c.Set(conversationClaimsKey, claims)
		c.Next()
	}
}

// GetConversationClaims obtiene los claims del token desde el contexto.
func GetConversationClaims(c *gin.Context) (service.ConversationClaims, bool) {
	val, ok := c.Get(conversationClaimsKey)
	if !ok {
		return service.ConversationClaims{}, false
	}
	claims, ok := val.(service.ConversationClaims)
	return claims, ok
}
