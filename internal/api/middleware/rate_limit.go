package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"dimission-forecast/pkg/response"
)

// RateLimiter 计数型限流器，由 pkg/redis.Client 实现
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按操作人限制手动触发任务的频率
// limiter 为 nil 或出错时降级放行
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		who := c.GetString(operatorKey)
		if who == "" {
			who = c.ClientIP()
		}
		key := fmt.Sprintf("%s:%s", who, c.FullPath())
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, "任务触发过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
