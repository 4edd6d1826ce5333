package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
)

// Metrics 采集 HTTP 指标；webhook 请求另按事件类型计数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		if size := c.Request.ContentLength; size > 0 {
			metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(size))
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
		if size := c.Writer.Size(); size > 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(size))
		}

		// EventContext 在路由级设置，此处已可读取
		if eventType, ok := c.Get(EventTypeContextKey); ok {
			label := eventLabel(eventType.(string))
			metrics.WebhookEventsTotal.WithLabelValues(label, status).Inc()
			metrics.WebhookEventDuration.WithLabelValues(label).Observe(duration)
		}
	}
}

// eventLabel 限制标签取值，未知类型统一记为 other
func eventLabel(t string) string {
	if entity.EventType(t).Valid() {
		return t
	}
	return "other"
}
