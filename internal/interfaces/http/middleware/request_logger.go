// Package middleware provides the gin middleware chain: request identity,
// structured access logging, rate limiting, and panic recovery.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an id, honoring one supplied by an
// upstream proxy, and threads it through the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger emits one structured access log line per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if requestID, ok := c.Request.Context().Value(constants.ContextKeyRequestID).(string); ok {
			fields = append(fields, logger.String("request_id", requestID))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error(c.Request.Context(), "request failed", nil, fields...)
		default:
			log.Info(c.Request.Context(), "request completed", fields...)
		}
	}
}

// Recovery converts panics into 500 responses without leaking internals.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered", nil,
					logger.Any("panic", r),
					logger.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(500, gin.H{
					"error":             "server_error",
					"error_description": "An unexpected error occurred",
				})
			}
		}()
		c.Next()
	}
}
