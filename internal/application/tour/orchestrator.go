// Package tour 实现导览状态机：接收用户事件，推进会话阶段，产出出站消息。
package tour

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/answer"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/repository"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
	apperrors "github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/tracer"
)

// Options 编排器参数
type Options struct {
	CallTimeout       time.Duration
	MessageChunkRunes int
	CaptionRunes      int
	MuseumLink        string
}

// Dependencies 编排器依赖，Events 可为空
type Dependencies struct {
	Sessions  repository.SessionRepository
	Catalog   repository.ArtworkCatalog
	Retriever Retriever
	Answers   AnswerService
	Narrator  Narrator
	Lengths   *LengthSampler
	Events    TourEventSink
}

type Orchestrator struct {
	deps  Dependencies
	opts  Options
	locks *keyedMutex
	now   func() time.Time
}

func NewOrchestrator(deps Dependencies, opts Options) *Orchestrator {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	return &Orchestrator{
		deps:  deps,
		opts:  opts,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Handle 处理一条用户事件。
//
// 同一用户的事件串行处理。外部调用失败时会话保持不变，只追加一条重试提示；
// 会话存储不可用时返回错误。
func (o *Orchestrator) Handle(ctx context.Context, ev entity.Event) ([]entity.Outbound, error) {
	userID := strings.TrimSpace(ev.UserID)
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "user id is required")
	}
	if !ev.Type.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown event type").WithDetail("type=" + string(ev.Type))
	}
	if ev.Type == entity.EventButton && !ev.Tag.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown button tag").WithDetail("tag=" + string(ev.Tag))
	}
	ev.UserID = userID

	ctx, span := tracer.Start(ctx, "tour.Handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("event.type", string(ev.Type)),
	)
	ctx = logger.WithContext(ctx, logger.UserIDKey, userID)

	unlock := o.locks.Lock(userID)
	defer unlock()

	stored, err := o.deps.Sessions.Get(ctx, userID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeSessionStoreError, "failed to load session")
	}

	var sess *entity.TourSession
	if stored == nil || ev.Type == entity.EventStart {
		// 没有会话时任何事件都视为重新开始
		sess = entity.NewTourSession(userID, o.now())
		ev = entity.Event{UserID: userID, Type: entity.EventStart}
	} else {
		sess = stored.Clone()
	}

	from := sess.Stage.Kind()
	ctx = logger.WithContext(ctx, logger.StageKey, string(from))
	span.SetAttributes(attribute.String("tour.stage", string(from)))

	out := newOutbox(o.opts.MessageChunkRunes, o.opts.CaptionRunes)
	changed, err := o.dispatch(ctx, sess, ev, out)
	if err != nil {
		tracer.RecordError(span, err)
		out.text(msgTryAgain)
		return out.messages(), nil
	}
	if !changed {
		return out.messages(), nil
	}

	sess.UpdatedAt = o.now()
	if err := o.deps.Sessions.Save(ctx, sess); err != nil {
		tracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeSessionStoreError, "failed to save session")
	}

	to := sess.Stage.Kind()
	if to != from {
		metrics.TourTransitions.WithLabelValues(string(from), string(to)).Inc()
		logger.Info(ctx, "tour stage changed", "to", string(to))
	}
	return out.messages(), nil
}

// dispatch 返回会话是否需要保存
func (o *Orchestrator) dispatch(ctx context.Context, s *entity.TourSession, ev entity.Event, out *outbox) (bool, error) {
	if ev.Type == entity.EventStart {
		return o.onStart(s, out), nil
	}

	isButton := ev.Type == entity.EventButton
	switch st := s.Stage.(type) {
	case entity.AwaitingProfile:
		if ev.Type == entity.EventText {
			return o.onProfile(s, ev.Text, out), nil
		}
	case entity.AwaitingTourLength:
		if isButton && ev.Tag.IsTourLength() {
			return o.onTourLength(s, ev.Tag, out)
		}
	case entity.PlanningRoute:
		switch {
		case ev.Type == entity.EventText:
			return o.onRouteQuery(ctx, s, st, ev.Text, out)
		case isButton && ev.Tag == entity.TagEndTour:
			// 只有路线为空时才会停留在这里并展示结束按钮
			return o.onEndTour(ctx, s, out)
		}
	case entity.Touring, entity.Questioning:
		switch {
		case isButton && ev.Tag == entity.TagNextArtwork && s.HasNextArtwork():
			return o.onNextArtwork(ctx, s, out)
		case isButton && ev.Tag == entity.TagEndTour:
			return o.onEndTour(ctx, s, out)
		case ev.Type == entity.EventText && s.Stage.Kind() == entity.StageQuestioning:
			return o.onQuestion(ctx, s, ev.Text, out)
		}
	}

	o.ignore(ctx, s, ev)
	return false, nil
}

func (o *Orchestrator) onStart(s *entity.TourSession, out *outbox) bool {
	s.Stage = entity.AwaitingProfile{}
	out.text(msgGreeting)
	return true
}

func (o *Orchestrator) onProfile(s *entity.TourSession, text string, out *outbox) bool {
	s.Profile = strings.TrimSpace(text)
	s.Stage = entity.AwaitingTourLength{}
	out.text(msgChooseLength, lengthKeyboard...)
	return true
}

func (o *Orchestrator) onTourLength(s *entity.TourSession, tag entity.ButtonTag, out *outbox) (bool, error) {
	size, err := o.deps.Lengths.Sample(tag)
	if err != nil {
		return false, err
	}
	s.Stage = entity.PlanningRoute{TourSize: size}
	out.text(msgWhatToSee)
	return true, nil
}

func (o *Orchestrator) onRouteQuery(ctx context.Context, s *entity.TourSession, st entity.PlanningRoute, query string, out *outbox) (bool, error) {
	out.text(msgPreparingRoute)

	var artworks []*entity.Artwork
	err := o.call(ctx, "retrieve", func(ctx context.Context) error {
		var err error
		artworks, err = o.deps.Retriever.Retrieve(ctx, s.Profile, query, st.TourSize)
		return err
	})
	if err != nil {
		return false, err
	}
	if len(artworks) == 0 {
		logger.Warn(ctx, "route is empty", "tour_size", st.TourSize)
		out.text(msgNoArtworks, endKeyboard...)
		return false, nil
	}

	ids := make([]string, 0, len(artworks))
	route := make([]wfmodel.RouteArtwork, 0, len(artworks))
	for _, a := range artworks {
		ids = append(ids, a.ID)
		route = append(route, wfmodel.RouteArtwork{ID: a.ID, Text: a.Text})
	}

	var narration string
	err = o.call(ctx, "narrate_route", func(ctx context.Context) error {
		var err error
		narration, err = o.deps.Narrator.NarrateRoute(ctx, wfmodel.RouteNarrationInput{
			Profile:  s.Profile,
			Query:    strings.TrimSpace(query),
			Artworks: route,
		})
		return err
	})
	if err != nil {
		return false, err
	}

	if err := s.PlanRoute(ids); err != nil {
		return false, err
	}
	logger.Info(ctx, "route planned", "route_length", len(ids), "tour_size", st.TourSize)

	out.text(SanitizeNarration(narration))
	out.text(msgReady, readyKeyboard...)
	return true, nil
}

func (o *Orchestrator) onNextArtwork(ctx context.Context, s *entity.TourSession, out *outbox) (bool, error) {
	id, _ := s.NextArtworkID()
	artwork, ok := o.deps.Catalog.ByID(id)
	if !ok {
		return false, o.missingArtwork(ctx, "present_artwork", id)
	}

	out.text(msgProcessingArtwork)

	var pres *answer.Presentation
	err := o.call(ctx, "present_artwork", func(ctx context.Context) error {
		var err error
		pres, err = o.deps.Answers.PresentArtwork(ctx, artwork, s.Profile)
		return err
	})
	if err != nil {
		return false, err
	}

	if _, err := s.AdvanceCursor(); err != nil {
		return false, err
	}

	out.artwork(artwork, pres.Text)
	if s.HasNextArtwork() {
		out.text(msgAskOrNext, nextKeyboard...)
	} else {
		out.text(msgAskLast, endKeyboard...)
	}
	return true, nil
}

// onQuestion 阶段不变，保存只为刷新会话时间
func (o *Orchestrator) onQuestion(ctx context.Context, s *entity.TourSession, question string, out *outbox) (bool, error) {
	id, _ := s.CurrentArtworkID()
	artwork, ok := o.deps.Catalog.ByID(id)
	if !ok {
		return false, o.missingArtwork(ctx, "answer_question", id)
	}

	out.text(msgProcessingQuestion)

	var ans *answer.Answer
	err := o.call(ctx, "answer_question", func(ctx context.Context) error {
		var err error
		ans, err = o.deps.Answers.Answer(ctx, question, artwork, s.Profile)
		return err
	})
	if err != nil {
		return false, err
	}

	out.text(ans.Text)
	return true, nil
}

func (o *Orchestrator) onEndTour(ctx context.Context, s *entity.TourSession, out *outbox) (bool, error) {
	var farewell string
	err := o.call(ctx, "farewell", func(ctx context.Context) error {
		var err error
		farewell, err = o.deps.Narrator.Farewell(ctx, wfmodel.FarewellInput{Profile: s.Profile})
		return err
	})
	if err != nil {
		return false, err
	}

	s.Stage = entity.Completed{}
	out.text(o.withMuseumLink(farewell))

	if o.deps.Events != nil {
		summary := TourSummary{
			UserID:       s.UserID,
			RouteLength:  len(s.Route),
			Shown:        s.Cursor,
			ProfileGiven: s.Profile != "",
		}
		if err := o.deps.Events.TourCompleted(ctx, summary); err != nil {
			logger.Warn(ctx, "failed to publish tour completed event", "error", err.Error())
		}
	}
	return true, nil
}

func (o *Orchestrator) withMuseumLink(farewell string) string {
	farewell = strings.TrimSpace(farewell)
	if o.opts.MuseumLink == "" {
		return farewell
	}
	return farewell + "\n\n" + msgMuseumLinkPrefix + o.opts.MuseumLink
}

// call 为每次外部调用设置独立超时
func (o *Orchestrator) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(callCtx); err != nil {
		metrics.TourOperationFailures.WithLabelValues(operation).Inc()
		logger.Error(ctx, "tour operation failed", err,
			"operation", operation,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
	return nil
}

// missingArtwork 路线中的展品不在语料中，按失败的操作记录
func (o *Orchestrator) missingArtwork(ctx context.Context, operation, id string) error {
	err := apperrors.New(apperrors.CodeCorpusError, "artwork missing from corpus").WithDetail("artwork_id=" + id)
	metrics.TourOperationFailures.WithLabelValues(operation).Inc()
	logger.Error(ctx, "tour operation failed", err,
		"operation", operation,
		"artwork_id", id,
	)
	return err
}

func (o *Orchestrator) ignore(ctx context.Context, s *entity.TourSession, ev entity.Event) {
	metrics.TourEventsIgnored.WithLabelValues(string(s.Stage.Kind()), string(ev.Type)).Inc()
	logger.Debug(ctx, "event ignored", "type", string(ev.Type), "tag", string(ev.Tag))
}
