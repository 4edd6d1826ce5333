package dto

import (
	"strings"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

// EventRequest 消息平台推送的用户事件
type EventRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Type   string `json:"type" binding:"required"`
	Text   string `json:"text,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// ToEntity 转换为领域事件，合法性由编排器校验
func (r *EventRequest) ToEntity() entity.Event {
	return entity.Event{
		UserID: strings.TrimSpace(r.UserID),
		Type:   entity.EventType(strings.TrimSpace(r.Type)),
		Text:   r.Text,
		Tag:    entity.ButtonTag(strings.TrimSpace(r.Tag)),
	}
}

// EventResponse 本次事件产生的出站消息，按发送顺序排列
type EventResponse struct {
	Outbound []entity.Outbound `json:"outbound"`
}

func ToEventResponse(out []entity.Outbound) *EventResponse {
	if out == nil {
		out = []entity.Outbound{}
	}
	return &EventResponse{Outbound: out}
}
