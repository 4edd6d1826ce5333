package entity

import (
	"encoding/json"
	"fmt"
)

type StageKind string

const (
	StageOnboarding         StageKind = "onboarding"
	StageAwaitingProfile    StageKind = "awaiting_profile"
	StageAwaitingTourLength StageKind = "awaiting_tour_length"
	StagePlanningRoute      StageKind = "planning_route"
	StageTouring            StageKind = "touring"
	StageQuestioning        StageKind = "questioning"
	StageCompleted          StageKind = "completed"
)

// Stage 会话所处阶段。只有 PlanningRoute 与 Questioning 携带数据，
// 其余阶段不可能持有无意义的字段。
type Stage interface {
	Kind() StageKind
	isStage()
}

type Onboarding struct{}

type AwaitingProfile struct{}

type AwaitingTourLength struct{}

// PlanningRoute 已选择导览长度，等待用户描述想看的内容
type PlanningRoute struct {
	TourSize int
}

type Touring struct{}

// Questioning 已展示路线中第 Artwork 个展品，可以就其提问
type Questioning struct {
	Artwork int
}

type Completed struct{}

func (Onboarding) Kind() StageKind         { return StageOnboarding }
func (AwaitingProfile) Kind() StageKind    { return StageAwaitingProfile }
func (AwaitingTourLength) Kind() StageKind { return StageAwaitingTourLength }
func (PlanningRoute) Kind() StageKind      { return StagePlanningRoute }
func (Touring) Kind() StageKind            { return StageTouring }
func (Questioning) Kind() StageKind        { return StageQuestioning }
func (Completed) Kind() StageKind          { return StageCompleted }

func (Onboarding) isStage()         {}
func (AwaitingProfile) isStage()    {}
func (AwaitingTourLength) isStage() {}
func (PlanningRoute) isStage()      {}
func (Touring) isStage()            {}
func (Questioning) isStage()        {}
func (Completed) isStage()          {}

// stageRecord 阶段的持久化形式
type stageRecord struct {
	Kind     StageKind `json:"kind"`
	TourSize int       `json:"tour_size,omitempty"`
	Artwork  int       `json:"artwork,omitempty"`
}

func encodeStage(s Stage) stageRecord {
	rec := stageRecord{Kind: s.Kind()}
	switch v := s.(type) {
	case PlanningRoute:
		rec.TourSize = v.TourSize
	case Questioning:
		rec.Artwork = v.Artwork
	}
	return rec
}

func decodeStage(rec stageRecord) (Stage, error) {
	switch rec.Kind {
	case StageOnboarding:
		return Onboarding{}, nil
	case StageAwaitingProfile:
		return AwaitingProfile{}, nil
	case StageAwaitingTourLength:
		return AwaitingTourLength{}, nil
	case StagePlanningRoute:
		return PlanningRoute{TourSize: rec.TourSize}, nil
	case StageTouring:
		return Touring{}, nil
	case StageQuestioning:
		return Questioning{Artwork: rec.Artwork}, nil
	case StageCompleted:
		return Completed{}, nil
	default:
		return nil, fmt.Errorf("unknown stage kind %q", rec.Kind)
	}
}

// MarshalStage 序列化阶段
func MarshalStage(s Stage) ([]byte, error) {
	if s == nil {
		s = Onboarding{}
	}
	return json.Marshal(encodeStage(s))
}

// UnmarshalStage 反序列化阶段
func UnmarshalStage(data []byte) (Stage, error) {
	var rec stageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return decodeStage(rec)
}
