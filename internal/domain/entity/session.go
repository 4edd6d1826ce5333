package entity

import (
	"encoding/json"
	"errors"
	"slices"
	"time"
)

var (
	ErrRouteAlreadyPlanned = errors.New("route already planned")
	ErrEmptyRoute          = errors.New("route is empty")
	ErrRouteExhausted      = errors.New("route exhausted")
)

// TourSession 单个用户的导览会话
//
// 路线只设置一次，之后 Cursor 只增不减且不超过路线长度；
// 处于 Questioning 阶段时 Stage.Artwork == Cursor-1。
type TourSession struct {
	UserID       string
	Stage        Stage
	Profile      string
	Route        []string
	RoutePlanned bool
	Cursor       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewTourSession(userID string, now time.Time) *TourSession {
	return &TourSession{
		UserID:    userID,
		Stage:     Onboarding{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone 深拷贝，处理事件时在副本上修改，成功后再整体保存
func (s *TourSession) Clone() *TourSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Route = slices.Clone(s.Route)
	return &c
}

// PlanRoute 设置路线并进入 Touring
func (s *TourSession) PlanRoute(artworkIDs []string) error {
	if s.RoutePlanned {
		return ErrRouteAlreadyPlanned
	}
	if len(artworkIDs) == 0 {
		return ErrEmptyRoute
	}
	s.Route = slices.Clone(artworkIDs)
	s.RoutePlanned = true
	s.Cursor = 0
	s.Stage = Touring{}
	return nil
}

func (s *TourSession) HasNextArtwork() bool {
	return s.RoutePlanned && s.Cursor < len(s.Route)
}

// IsLastShown 当前展示的是否为路线最后一个展品
func (s *TourSession) IsLastShown() bool {
	return s.RoutePlanned && s.Cursor == len(s.Route)
}

// NextArtworkID 返回下一个待展示展品
func (s *TourSession) NextArtworkID() (string, bool) {
	if !s.HasNextArtwork() {
		return "", false
	}
	return s.Route[s.Cursor], true
}

// AdvanceCursor 展示下一个展品：Cursor 加一并进入 Questioning
func (s *TourSession) AdvanceCursor() (int, error) {
	if !s.HasNextArtwork() {
		return 0, ErrRouteExhausted
	}
	idx := s.Cursor
	s.Cursor++
	s.Stage = Questioning{Artwork: idx}
	return idx, nil
}

// LastShownIndex 最近一次展示的展品在路线中的下标
func (s *TourSession) LastShownIndex() (int, bool) {
	q, ok := s.Stage.(Questioning)
	if !ok {
		return 0, false
	}
	return q.Artwork, true
}

// CurrentArtworkID 正在提问的展品
func (s *TourSession) CurrentArtworkID() (string, bool) {
	idx, ok := s.LastShownIndex()
	if !ok || idx < 0 || idx >= len(s.Route) {
		return "", false
	}
	return s.Route[idx], true
}

type tourSessionJSON struct {
	UserID       string      `json:"user_id"`
	Stage        stageRecord `json:"stage"`
	Profile      string      `json:"profile,omitempty"`
	Route        []string    `json:"route,omitempty"`
	RoutePlanned bool        `json:"route_planned"`
	Cursor       int         `json:"cursor"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (s TourSession) MarshalJSON() ([]byte, error) {
	stage := s.Stage
	if stage == nil {
		stage = Onboarding{}
	}
	return json.Marshal(tourSessionJSON{
		UserID:       s.UserID,
		Stage:        encodeStage(stage),
		Profile:      s.Profile,
		Route:        s.Route,
		RoutePlanned: s.RoutePlanned,
		Cursor:       s.Cursor,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	})
}

func (s *TourSession) UnmarshalJSON(data []byte) error {
	var raw tourSessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	stage, err := decodeStage(raw.Stage)
	if err != nil {
		return err
	}
	*s = TourSession{
		UserID:       raw.UserID,
		Stage:        stage,
		Profile:      raw.Profile,
		Route:        raw.Route,
		RoutePlanned: raw.RoutePlanned,
		Cursor:       raw.Cursor,
		CreatedAt:    raw.CreatedAt,
		UpdatedAt:    raw.UpdatedAt,
	}
	return nil
}
