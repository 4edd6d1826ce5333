package entity

// OutboundType 出站消息类型
type OutboundType string

const (
	OutboundText  OutboundType = "text"
	OutboundPhoto OutboundType = "photo"
)

// Button 内联键盘按钮
type Button struct {
	Label string    `json:"label"`
	Tag   ButtonTag `json:"tag"`
}

// Outbound 发送给用户的一条消息。文本已按平台长度限制切分为 Chunks。
type Outbound struct {
	Type     OutboundType `json:"type"`
	Chunks   []string     `json:"chunks,omitempty"`
	ImageRef string       `json:"image_ref,omitempty"`
	Caption  string       `json:"caption,omitempty"`
	Keyboard []Button     `json:"keyboard,omitempty"`
}
