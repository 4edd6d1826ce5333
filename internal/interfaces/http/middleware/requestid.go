package middleware

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"

	// gin.Context 中的键
	RequestIDContextKey = "request_id"
	UserIDContextKey    = "user_id"
	EventTypeContextKey = "event_type"

	maxRequestIDLen = 64
)

// RequestID 沿用平台传入的请求 ID，缺失或不合法时生成新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)
		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsPrint(r) || r == ' '
	}) < 0
}

// EventContext 从 webhook 请求体读取 user_id 与事件类型，
// 写入 gin.Context、日志上下文和当前 span。请求体缓存供处理器复用。
func EventContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			UserID string `json:"user_id"`
			Type   string `json:"type"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			// 交给处理器返回 400
			c.Next()
			return
		}

		userID := strings.TrimSpace(body.UserID)
		eventType := strings.TrimSpace(body.Type)
		if eventType != "" {
			c.Set(EventTypeContextKey, eventType)
		}
		if userID == "" {
			c.Next()
			return
		}

		c.Set(UserIDContextKey, userID)
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("user.id", userID),
			attribute.String("event.type", eventType),
		)

		c.Next()
	}
}
