package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a 500 and logs it with the
// stack, request id and user.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// http.ErrAbortHandler is how net/http expects a handler to drop the connection.
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			fields := append(requestFields(c),
				zap.Any("error", rec),
				zap.ByteString("stacktrace", debug.Stack()),
			)
			logger.Error("Panic recovered", fields...)
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}
