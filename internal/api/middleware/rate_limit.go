package middleware

import (
	"fmt"
	"net/http"
	"time"

	"classroom-service/internal/models"
	"classroom-service/internal/services"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	redisService *services.RedisService
}

func NewRateLimitMiddleware(redisService *services.RedisService) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redisService: redisService,
	}
}

// RateLimit throttles authenticated callers per user and endpoint.
func (rm *RateLimitMiddleware) RateLimit(requests int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHORIZED", Message: "unauthorized"})
			c.Abort()
			return
		}

		key := fmt.Sprintf("user:%d:%s", userID, c.Request.URL.Path)
		if !rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: fmt.Sprintf("too many requests, limit is %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitIP throttles public routes by client address. Used on the
// auth endpoints where there is no user yet.
func (rm *RateLimitMiddleware) RateLimitIP(requests int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		if !rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: fmt.Sprintf("too many requests, limit is %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
