package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainsvc "github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/internal/infrastructure/monitoring"
	"github.com/wangov/sso/pkg/logger"
)

// RateLimit throttles requests per client IP and endpoint. The limiter
// fails open: when the backing store is unreachable, requests pass.
func RateLimit(limiter domainsvc.RateLimitService, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("rate_limit")
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())

		allowed, remaining, resetAt, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn(c.Request.Context(), "rate limiter unavailable, failing open",
				logger.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			metrics.RecordRateLimitHit(c.FullPath())
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "temporarily_unavailable",
				"error_description": "Rate limit exceeded. Retry later.",
			})
			return
		}
		c.Next()
	}
}
