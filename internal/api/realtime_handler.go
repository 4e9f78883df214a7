package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedStreamer attaches a websocket connection to a user. *realtime.Hub implements it.
type FeedStreamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string) error
}

// RealtimeHandler upgrades GET /ws to a feed push connection.
type RealtimeHandler struct {
	streamer FeedStreamer
	logger   *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(streamer FeedStreamer, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{streamer: streamer, logger: logger}
}

// Connect handles GET /ws?token=.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	// Upgrade failures have already been answered by the upgrader.
	if err := h.streamer.ServeWS(c.Writer, c.Request, userID); err != nil {
		h.logger.Warn("WebSocket connection failed", zap.String("user_id", userID), zap.Error(err))
	}
}
