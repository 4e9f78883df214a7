package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// FeedHandler handles the shared-state feed.
type FeedHandler struct {
	socialService core.SocialService
	logger        *zap.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(ss core.SocialService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{socialService: ss, logger: logger}
}

// ShareState handles POST /api/v1/feed.
func (h *FeedHandler) ShareState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ShareStateRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.socialService.ShareState(c.Request.Context(), userID, req)
	if err != nil {
		writeSocialError(c, h.logger, "ShareState", userID, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetFeed handles GET /api/v1/feed?limit=.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	feed, err := h.socialService.GetFeed(c.Request.Context(), userID, limit)
	if err != nil {
		writeSocialError(c, h.logger, "GetFeed", userID, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// DeleteSharedState handles DELETE /api/v1/feed/:stateId.
func (h *FeedHandler) DeleteSharedState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.socialService.DeleteSharedState(c.Request.Context(), userID, c.Param("stateId")); err != nil {
		writeSocialError(c, h.logger, "DeleteSharedState", userID, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikeState handles POST /api/v1/feed/:stateId/like.
func (h *FeedHandler) LikeState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.socialService.LikeState(c.Request.Context(), userID, c.Param("stateId")); err != nil {
		writeSocialError(c, h.logger, "LikeState", userID, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Liked"})
}

// UnlikeState handles DELETE /api/v1/feed/:stateId/like.
func (h *FeedHandler) UnlikeState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.socialService.UnlikeState(c.Request.Context(), userID, c.Param("stateId")); err != nil {
		writeSocialError(c, h.logger, "UnlikeState", userID, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Unliked"})
}

// CommentOnState handles POST /api/v1/feed/:stateId/comments.
func (h *FeedHandler) CommentOnState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.socialService.CommentOnState(c.Request.Context(), userID, c.Param("stateId"), req.Text)
	if err != nil {
		writeSocialError(c, h.logger, "CommentOnState", userID, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
