package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// ChatHandler handles the wellness assistant endpoints.
type ChatHandler struct {
	chatService core.ChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(cs core.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: cs, logger: logger}
}

// SendMessage handles POST /api/v1/chat/messages and returns the assistant reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.chatService.SendMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid message", Details: err.Error()})
		case errors.Is(err, core.ErrAssistantUnavailable):
			h.logger.Warn("Chat assistant unavailable", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: assistantUnavailableMessage})
		default:
			h.logger.Error("SendMessage failed", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to send message"})
		}
		return
	}
	c.JSON(http.StatusOK, reply)
}

// GetHistory handles GET /api/v1/chat/messages?limit=.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", core.DefaultHistoryLimit)
	if !ok {
		return
	}
	messages, err := h.chatService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("GetHistory failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load chat history"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ClearHistory handles DELETE /api/v1/chat/messages.
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	deleted, err := h.chatService.ClearHistory(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ClearHistory failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to clear chat history"})
		return
	}
	c.JSON(http.StatusOK, ClearHistoryResponse{Deleted: deleted})
}
