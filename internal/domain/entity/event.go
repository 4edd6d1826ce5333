package entity

// EventType 入站事件类型
type EventType string

const (
	EventStart  EventType = "start"
	EventText   EventType = "text"
	EventButton EventType = "button"
)

func (t EventType) Valid() bool {
	switch t {
	case EventStart, EventText, EventButton:
		return true
	}
	return false
}

// ButtonTag 按钮回调标识
type ButtonTag string

const (
	TagShort       ButtonTag = "short"
	TagMedium      ButtonTag = "medium"
	TagLong        ButtonTag = "long"
	TagNextArtwork ButtonTag = "next_artwork"
	TagEndTour     ButtonTag = "end_tour"
)

func (t ButtonTag) Valid() bool {
	switch t {
	case TagShort, TagMedium, TagLong, TagNextArtwork, TagEndTour:
		return true
	}
	return false
}

// IsTourLength 是否为导览长度选择
func (t ButtonTag) IsTourLength() bool {
	return t == TagShort || t == TagMedium || t == TagLong
}

// Event 来自消息平台的一条用户事件
type Event struct {
	UserID string
	Type   EventType
	Text   string
	Tag    ButtonTag
}
