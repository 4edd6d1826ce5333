package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/interfaces/http/dto"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

// Recovery 捕获 panic，按统一错误结构返回 500，详情中带 request_id
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"event_type", c.GetString(EventTypeContextKey),
			)

			c.Abort()
			if c.Writer.Written() {
				return
			}
			dto.ErrorWithDetail(c, http.StatusInternalServerError, errors.ErrInternalError.Message, &dto.ErrorDetail{
				ErrorCode: string(errors.CodeInternalError),
				Details:   "request_id=" + c.GetString(RequestIDContextKey),
			})
		}()

		c.Next()
	}
}
