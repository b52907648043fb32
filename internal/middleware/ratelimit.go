package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/ratelimit"
	"github.com/stackit-qa/stackit/backend/internal/response"
)

// RateLimit throttles requests per client ip.
func RateLimit(limiter *ratelimit.KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			response.Abort(c, apperr.RateLimited("Too many requests, slow down"))
			return
		}
		c.Next()
	}
}
