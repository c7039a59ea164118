package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sudooom.im.groupchat/internal/repository"
	"sudooom.im.groupchat/pkg/jwt"
	"sudooom.im.groupchat/pkg/response"
)

// TokenAuth JWT 认证中间件
// 除签名校验外还检查 Redis 中的登录态：登出或被挤下线的 Token 立即失效。
// 剩余有效期低于 autoRenewThreshold 时自动续期
func TokenAuth(jwtService *jwt.Service, tokenRepo *repository.TokenRepository, autoRenewThreshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				response.Error(c, response.CodeTokenExpired)
			} else {
				response.Error(c, response.CodeTokenInvalid)
			}
			c.Abort()
			return
		}

		userInfo, err := tokenRepo.GetUserInfoByToken(c.Request.Context(), token)
		if err != nil || userInfo == nil || userInfo.UserID != claims.UserID {
			response.Error(c, response.CodeTokenInvalid)
			c.Abort()
			return
		}

		// 登录态临近过期时滑动续期
		if autoRenewThreshold > 0 {
			if ttl, err := tokenRepo.GetTokenTTL(c.Request.Context(), token); err == nil && ttl > 0 && ttl < autoRenewThreshold {
				if err := tokenRepo.RefreshTokenExpire(c.Request.Context(), userInfo, token, jwtService.GetAccessExpire()); err != nil {
					slog.Warn("Failed to renew token expire", "error", err)
				}
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("device_id", claims.DeviceID)
		c.Set("access_token", token)
		c.Next()
	}
}

// extractToken 从 Authorization header 提取 token
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

// GetUserID 从 context 获取 user_id
func GetUserID(c *gin.Context) int64 {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	return userID.(int64)
}

// GetAccessToken 从 context 获取当前请求的 access token
func GetAccessToken(c *gin.Context) string {
	token, exists := c.Get("access_token")
	if !exists {
		return ""
	}
	return token.(string)
}
