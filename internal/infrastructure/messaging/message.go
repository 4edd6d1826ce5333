// Package messaging 通过 Redis Stream 发布审计记录与导览事件
package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message 流消息信封
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息，ID 为随机 UUID
func NewMessage(msgType, userID string, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// 消息类型
const (
	TypeUngrounded    = "ungrounded_text"
	TypeTourCompleted = "tour_completed"
)

// UngroundedMessage 未通过核验的生成文本
type UngroundedMessage struct {
	Kind      string `json:"kind"`
	ArtworkID string `json:"artwork_id"`
	Question  string `json:"question,omitempty"`
	Text      string `json:"text"`
	Verdict   string `json:"verdict"`
	RawOutput string `json:"raw_output"`
	Outcome   string `json:"outcome,omitempty"`
}

// TourCompletedMessage 导览结束摘要
type TourCompletedMessage struct {
	RouteLength  int  `json:"route_length"`
	Shown        int  `json:"shown"`
	ProfileGiven bool `json:"profile_given"`
}
