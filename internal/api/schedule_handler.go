package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// ScheduleHandler handles weekly schedule endpoints.
type ScheduleHandler struct {
	scheduleService core.ScheduleService
	logger          *zap.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(ss core.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss, logger: logger}
}

// GetSchedule handles GET /api/v1/schedule.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, "GetSchedule", userID, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// SaveSchedule handles PUT /api/v1/schedule, replacing the whole week.
func (h *ScheduleHandler) SaveSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.SaveScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := h.scheduleService.SaveSchedule(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, "SaveSchedule", userID, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// GetFreeSlots handles GET /api/v1/schedule/free-slots/:day.
func (h *ScheduleHandler) GetFreeSlots(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	day := c.Param("day")
	slots, err := h.scheduleService.GetFreeSlots(c.Request.Context(), userID, day)
	if err != nil {
		h.handleError(c, "GetFreeSlots", userID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "slots": slots})
}

// GetSleepAnalysis handles GET /api/v1/schedule/sleep.
func (h *ScheduleHandler) GetSleepAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	report, err := h.scheduleService.GetSleepAnalysis(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, "GetSleepAnalysis", userID, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetWeeklySummary handles GET /api/v1/schedule/summary.
func (h *ScheduleHandler) GetWeeklySummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	summary, err := h.scheduleService.GetWeeklySummary(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, "GetWeeklySummary", userID, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ScheduleHandler) handleError(c *gin.Context, op, userID string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidDay), errors.Is(err, core.ErrInvalidSchedule), errors.Is(err, core.ErrInvalidClock):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid schedule", Details: err.Error()})
	default:
		h.logger.Error(op+" failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process schedule request"})
	}
}
