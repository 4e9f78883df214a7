package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// FriendHandler handles friend requests and friendships.
type FriendHandler struct {
	socialService core.SocialService
	logger        *zap.Logger
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(ss core.SocialService, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{socialService: ss, logger: logger}
}

// SendFriendRequest handles POST /api/v1/friends/requests. When the target had
// already asked the caller, the request is accepted and 200 is returned instead of 201.
func (h *FriendHandler) SendFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var body models.FriendRequestBody
	if !bindJSON(c, &body) {
		return
	}
	req, accepted, err := h.socialService.SendFriendRequest(c.Request.Context(), userID, body.ToUserID)
	if err != nil {
		writeSocialError(c, h.logger, "SendFriendRequest", userID, err)
		return
	}
	if accepted {
		c.JSON(http.StatusOK, FriendRequestResponse{Request: req, Accepted: true})
		return
	}
	c.JSON(http.StatusCreated, FriendRequestResponse{Request: req})
}

// ListRequests handles GET /api/v1/friends/requests?direction=incoming|outgoing.
func (h *FriendHandler) ListRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var (
		requests []*models.FriendRequest
		err      error
	)
	switch c.DefaultQuery("direction", "incoming") {
	case "incoming":
		requests, err = h.socialService.ListIncomingRequests(c.Request.Context(), userID)
	case "outgoing":
		requests, err = h.socialService.ListOutgoingRequests(c.Request.Context(), userID)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameter", Details: "direction must be incoming or outgoing"})
		return
	}
	if err != nil {
		writeSocialError(c, h.logger, "ListRequests", userID, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// AcceptFriendRequest handles POST /api/v1/friends/requests/:fromUserId/accept.
func (h *FriendHandler) AcceptFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.socialService.AcceptFriendRequest(c.Request.Context(), userID, c.Param("fromUserId")); err != nil {
		writeSocialError(c, h.logger, "AcceptFriendRequest", userID, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Friend request accepted"})
}

// RejectFriendRequest handles POST /api/v1/friends/requests/:fromUserId/reject.
func (h *FriendHandler) RejectFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.socialService.RejectFriendRequest(c.Request.Context(), userID, c.Param("fromUserId")); err != nil {
		writeSocialError(c, h.logger, "RejectFriendRequest", userID, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Friend request rejected"})
}

// ListFriends handles GET /api/v1/friends.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friends, err := h.socialService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		writeSocialError(c, h.logger, "ListFriends", userID, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// RemoveFriend handles DELETE /api/v1/friends/:friendId.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.socialService.RemoveFriend(c.Request.Context(), userID, c.Param("friendId")); err != nil {
		writeSocialError(c, h.logger, "RemoveFriend", userID, err)
		return
	}
	c.Status(http.StatusNoContent)
}
