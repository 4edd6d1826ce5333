// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/interfaces/http/dto"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

// EventProcessor 处理单条用户事件并返回出站消息
type EventProcessor interface {
	Handle(ctx context.Context, ev entity.Event) ([]entity.Outbound, error)
}

// EventHandler 消息平台 webhook 处理器
type EventHandler struct {
	processor EventProcessor
}

// NewEventHandler 创建事件处理器
func NewEventHandler(processor EventProcessor) *EventHandler {
	return &EventHandler{processor: processor}
}

// HandleEvent 处理一条用户事件
// @Summary 处理用户事件
// @Description 接收 start/text/button 事件，返回按顺序发送的消息
// @Tags Events
// @Accept json
// @Produce json
// @Param body body dto.EventRequest true "用户事件"
// @Success 200 {object} dto.Response[dto.EventResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/events [post]
func (h *EventHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	// 限流中间件可能已读取过请求体
	var req dto.EventRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.processor.Handle(ctx, req.ToEntity())
	if err != nil {
		if !errors.HasCode(err, errors.CodeInvalidParam) {
			logger.Error(ctx, "failed to handle event", err, "user_id", req.UserID, "type", req.Type)
		}
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.ToEventResponse(out))
}
