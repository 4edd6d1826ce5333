// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// Limit 窗口内允许的请求数
	Limit int
	// Window 滑动窗口长度
	Window time.Duration
	// KeyPrefix Redis Key 前缀
	KeyPrefix string
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// KeyFunc 从请求中提取限流主体
type KeyFunc func(c *gin.Context) string

// RateLimit 限流中间件
func RateLimit(cfg RateLimitConfig, limiter RateLimiter, keyFn KeyFunc) gin.HandlerFunc {
	// 如果未启用限流，返回空中间件
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.Limit <= 0 {
		cfg.Limit = 30
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit"
	}
	if keyFn == nil {
		keyFn = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		subject := keyFn(c)
		if subject == "" {
			subject = "anonymous"
		}
		key := cfg.KeyPrefix + ":" + subject + ":" + c.FullPath()

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			// 限流器故障时放行，避免影响业务
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":     http.StatusTooManyRequests,
				"message":  errors.ErrTooManyRequests.Message,
				"trace_id": c.GetString("trace_id"),
			})
			return
		}

		c.Next()
	}
}

// UserIDFromEventBody 优先取 EventContext 写入的 user_id，否则从请求体读取，
// 请求体会缓存供后续处理器复用
func UserIDFromEventBody(c *gin.Context) string {
	if id := c.GetString(UserIDContextKey); id != "" {
		return id
	}
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return c.ClientIP()
	}
	if id := strings.TrimSpace(body.UserID); id != "" {
		return id
	}
	return c.ClientIP()
}
