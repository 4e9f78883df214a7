package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
)

// writeSocialError maps social service errors shared by the friend and feed handlers.
func writeSocialError(c *gin.Context, logger *zap.Logger, op, userID string, err error) {
	switch {
	case errors.Is(err, core.ErrSelfFriendRequest), errors.Is(err, core.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrInvalidEmotion):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid emotion", Details: err.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
	case errors.Is(err, core.ErrFriendRequestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Friend request not found"})
	case errors.Is(err, core.ErrFriendshipNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Friendship not found"})
	case errors.Is(err, core.ErrSharedStateNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Shared state not found"})
	case errors.Is(err, core.ErrAlreadyFriends), errors.Is(err, core.ErrFriendRequestExists),
		errors.Is(err, core.ErrAlreadyLiked), errors.Is(err, core.ErrNotLiked):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotStateOwner), errors.Is(err, core.ErrNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		logger.Error(op+" failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process social request"})
	}
}
