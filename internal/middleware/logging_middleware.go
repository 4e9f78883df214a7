package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "requestID"
)

// RequestLogger tags each request with an id, taken from X-Request-ID when the
// client sent one, and logs the outcome once handlers have run. The websocket
// query is never logged because it holds the ID token.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RequestLogger requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		query := c.Request.URL.RawQuery

		c.Next()

		statusCode := c.Writer.Status()
		fields := append(requestFields(c),
			zap.Int("status_code", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
		if query != "" && c.FullPath() != "/ws" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("gin_errors", c.Errors.String()))
		}

		switch {
		case statusCode >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case statusCode >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}

// requestFields identifies the request: id, method, path, matched route and,
// once authenticated, the user.
func requestFields(c *gin.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", c.GetString(ContextRequestID)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	}
	if route := c.FullPath(); route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if uid := UserID(c); uid != "" {
		fields = append(fields, zap.String("user_id", uid))
	}
	return fields
}
