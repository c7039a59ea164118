package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"sudooom.im.groupchat/pkg/response"
)

// RateLimit 基于 Redis 固定窗口的限流中间件
// key 维度：已登录用户按 user_id，未登录按客户端 IP
func RateLimit(rdb *redis.Client, requestsPerMinute int, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var subject string
		if userID := GetUserID(c); userID != 0 {
			subject = fmt.Sprintf("u:%d", userID)
		} else {
			subject = "ip:" + c.ClientIP()
		}
		key := fmt.Sprintf("im:ratelimit:%s:%s:%d", scope, subject, time.Now().Unix()/60)

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis 不可用时放行，限流不应阻塞业务
			slog.Warn("Rate limit check failed", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(requestsPerMinute) {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
