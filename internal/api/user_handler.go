package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/core"
	"github.com/tranki-app/tranki-backend/internal/middleware"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// MaxProfilePictureSize bounds profile picture uploads.
const MaxProfilePictureSize = 5 << 20

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles POST /api/v1/users/initialize, called by the
// client after Firebase sign-in. It answers 201 when the profile was created.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	email := c.GetString(middleware.ContextUserEmail)
	displayName := c.GetString(middleware.ContextUserDisplayName)
	photoURL := c.GetString(middleware.ContextUserPhotoURL)

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email, displayName, photoURL)
	if err != nil {
		h.logger.Error("InitializeUserProfile failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile"})
		return
	}
	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, "GetCurrentUserProfile", userID, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, "UpdateProfile", userID, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadProfilePicture handles POST /api/v1/users/me/picture with a multipart "image" field.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxProfilePictureSize+(1<<20))
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "An image file is required", Details: err.Error()})
		return
	}
	if header.Size > MaxProfilePictureSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Image must be at most 5 MB"})
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "File must be an image", Details: ct})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read uploaded file", Details: err.Error()})
		return
	}
	defer file.Close()

	user, err := h.userService.UploadProfilePicture(c.Request.Context(), userID, file)
	if err != nil {
		h.handleError(c, "UploadProfilePicture", userID, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SearchUsers handles GET /api/v1/users/search?q=.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	users, err := h.userService.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		h.handleError(c, "SearchUsers", userID, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) handleError(c *gin.Context, op, userID string, err error) {
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
	case errors.Is(err, core.ErrInvalidProfile), errors.Is(err, core.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	default:
		h.logger.Error(op+" failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process user profile request"})
	}
}
