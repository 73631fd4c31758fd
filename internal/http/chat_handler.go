package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medisense/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de conversaciones y mensajes.
type ChatHandler struct {
	logger        *zap.Logger
	conversations *service.ConversationService
	tokens        *service.ConversationTokenService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	conversations *service.ConversationService,
	tokens *service.ConversationTokenService,
) *ChatHandler {
	return &ChatHandler{
		logger:        logger,
		conversations: conversations,
		tokens:        tokens,
	}
}

// CreateConversation maneja POST /conversations.
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	conversation, err := h.conversations.Start(c.Request.Context())
	if err != nil {
		h.logger.Error("create conversation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create conversation"})
		return
	}

	token, err := h.tokens.Issue(conversation)
	if err != nil {
		h.logger.Error("issue conversation token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create conversation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation": conversation,
		"token":        token,
	})
}

// PostMessage maneja POST /conversations/:id/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	conversationID := c.Param("id")
	userMsg, assistantMsg, err := h.conversations.Reply(c.Request.Context(), conversationID, req.Content)
	if err != nil {
		status, msg := replyErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("conversation reply failed", zap.Error(err), zap.String("conversation_id", conversationID))
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_message":      userMsg,
		"assistant_message": assistantMsg,
	})
}

// ListMessages maneja GET /conversations/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.conversations.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, msg := replyErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("list messages failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func replyErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMessageInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrConversationNotFound):
		return http.StatusNotFound, "conversation not found"
	case errors.Is(err, service.ErrConversationBusy):
		return http.StatusConflict, "a reply is already in progress for this conversation"
	default:
		return http.StatusInternalServerError, "could not process message"
	}
}
