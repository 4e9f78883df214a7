package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// Default look-back windows for the emotion read endpoints.
const (
	defaultAverageDays  = 7
	defaultInsightDays  = 30
	defaultEmotionLimit = 100
)

// EmotionHandler handles emotion tracking endpoints.
type EmotionHandler struct {
	emotionService core.EmotionService
	logger         *zap.Logger
}

// NewEmotionHandler creates a new EmotionHandler.
func NewEmotionHandler(es core.EmotionService, logger *zap.Logger) *EmotionHandler {
	return &EmotionHandler{emotionService: es, logger: logger}
}

// RecordEmotion handles POST /api/v1/emotions.
func (h *EmotionHandler) RecordEmotion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.RecordEmotionRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.emotionService.RecordEmotion(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, "RecordEmotion", userID, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListEmotions handles GET /api/v1/emotions?from=&to=&limit=.
func (h *EmotionHandler) ListEmotions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", defaultEmotionLimit)
	if !ok {
		return
	}
	filter := models.EmotionFilter{From: c.Query("from"), To: c.Query("to"), Limit: limit}
	records, err := h.emotionService.ListEmotions(c.Request.Context(), userID, filter)
	if err != nil {
		h.handleError(c, "ListEmotions", userID, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetDailyAverages handles GET /api/v1/emotions/daily?days=.
func (h *EmotionHandler) GetDailyAverages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", defaultAverageDays)
	if !ok {
		return
	}
	averages, err := h.emotionService.GetDailyAverages(c.Request.Context(), userID, days)
	if err != nil {
		h.handleError(c, "GetDailyAverages", userID, err)
		return
	}
	c.JSON(http.StatusOK, averages)
}

// GetInsights handles GET /api/v1/emotions/insights?days=.
func (h *EmotionHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", defaultInsightDays)
	if !ok {
		return
	}
	insights, err := h.emotionService.GetInsights(c.Request.Context(), userID, days)
	if err != nil {
		h.handleError(c, "GetInsights", userID, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

// DeleteEmotion handles DELETE /api/v1/emotions/:emotionId.
func (h *EmotionHandler) DeleteEmotion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.emotionService.DeleteEmotion(c.Request.Context(), userID, c.Param("emotionId")); err != nil {
		h.handleError(c, "DeleteEmotion", userID, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EmotionHandler) handleError(c *gin.Context, op, userID string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidEmotion), errors.Is(err, core.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrEmotionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Emotion record not found"})
	default:
		h.logger.Error(op+" failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process emotion request"})
	}
}
