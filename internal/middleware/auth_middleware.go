package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by VerifyToken.
const (
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
	ContextUserPhotoURL    = "userPhotoURL"
)

// ErrorResponse mirrors api.ErrorResponse; it is redefined here to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken verifies the bearer token of the Authorization header and stores
// the user's claims in the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}
		m.authenticate(c, parts[1])
	}
}

// VerifyQueryToken reads the token from the "token" query parameter, for
// websocket handshakes where browsers cannot set headers.
func (m *AuthMiddleware) VerifyQueryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken := c.Query("token")
		if idToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "token query parameter is required"})
			return
		}
		m.authenticate(c, idToken)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, idToken string) {
	token, err := m.verifier.VerifyIDToken(c.Request.Context(), idToken)
	if err != nil {
		m.logger.Warn("Error verifying Firebase ID token", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
		return
	}

	c.Set(ContextUserID, token.UID)
	if email, ok := token.Claims["email"].(string); ok {
		c.Set(ContextUserEmail, email)
	}
	if name, ok := token.Claims["name"].(string); ok {
		c.Set(ContextUserDisplayName, name)
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		c.Set(ContextUserPhotoURL, picture)
	}
	c.Next()
}

// UserID returns the authenticated user id, or "" outside an authenticated route.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
