package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"imagedrop/internal/pkg/response"
)

// ErrorLogger logs failed requests and recovers from panics.
func ErrorLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				logRequestError(log, c, start, "panic", err.Error(), debug.Stack())
				response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Internal Server Error")
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(log, c, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status()), nil)
				}
				return
			}

			for _, err := range c.Errors {
				logRequestError(log, c, start, fmt.Sprintf("%v", err.Type), err.Error(), nil)
			}
		}()

		c.Next()
	}
}

// RequestLogger writes one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", requestID(c),
		)
	}
}

func logRequestError(log *slog.Logger, c *gin.Context, start time.Time, errType string, message string, stack []byte) {
	args := []any{
		"type", errType,
		"status", c.Writer.Status(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
		"user_id", c.GetInt64("user_id"),
		"request_id", requestID(c),
		"latency", time.Since(start),
		"error", message,
	}
	if stack != nil {
		args = append(args, "stack", string(stack))
	}
	log.Error("request_error", args...)
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
