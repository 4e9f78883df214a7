package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tranki-app/tranki-backend/internal/middleware"
)

// assistantUnavailableMessage is shown to the user when the chat model cannot answer.
const assistantUnavailableMessage = "El asistente no está disponible en este momento. Inténtalo de nuevo más tarde."

// currentUserID returns the authenticated user id, answering 401 when the auth
// middleware did not run.
func currentUserID(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter, answering 400 when it is malformed.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameter", Details: name + " must be an integer"})
		return 0, false
	}
	return v, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}
