package tour

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/answer"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
)

type memSessions struct {
	mu      sync.Mutex
	data    map[string]*entity.TourSession
	getErr  error
	saveErr error
	saves   int
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[string]*entity.TourSession)}
}

func (m *memSessions) Get(_ context.Context, userID string) (*entity.TourSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[userID].Clone(), nil
}

func (m *memSessions) Save(_ context.Context, s *entity.TourSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[s.UserID] = s.Clone()
	return nil
}

func (m *memSessions) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, userID)
	return nil
}

func (m *memSessions) put(s *entity.TourSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.UserID] = s.Clone()
}

func (m *memSessions) snapshot(userID string) *entity.TourSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[userID].Clone()
}

type fakeRetriever struct {
	artworks []*entity.Artwork
	err      error
	gotK     int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _, _ string, k int) ([]*entity.Artwork, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.artworks[:min(k, len(f.artworks))], nil
}

type fakeAnswers struct {
	presentErr error
	answerErr  error
	answerText string
	delay      time.Duration

	inFlight    sync.Map
	maxParallel atomic.Int32
}

func (f *fakeAnswers) enter(userKey string) func() {
	v, _ := f.inFlight.LoadOrStore(userKey, new(atomic.Int32))
	n := v.(*atomic.Int32).Add(1)
	for {
		cur := f.maxParallel.Load()
		if n <= cur || f.maxParallel.CompareAndSwap(cur, n) {
			break
		}
	}
	return func() { v.(*atomic.Int32).Add(-1) }
}

func (f *fakeAnswers) PresentArtwork(ctx context.Context, artwork *entity.Artwork, profile string) (*answer.Presentation, error) {
	defer f.enter(profile)()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.presentErr != nil {
		return nil, f.presentErr
	}
	return &answer.Presentation{Text: "Рассказ об экспонате " + artwork.ID}, nil
}

func (f *fakeAnswers) Answer(_ context.Context, question string, _ *entity.Artwork, profile string) (*answer.Answer, error) {
	defer f.enter(profile)()
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	text := f.answerText
	if text == "" {
		text = "Ответ на вопрос: " + question
	}
	return &answer.Answer{Text: text, Outcome: answer.OutcomeConcise}, nil
}

type fakeNarrator struct {
	narration   string
	farewell    string
	err         error
	gotArtworks []wfmodel.RouteArtwork
}

func (f *fakeNarrator) NarrateRoute(_ context.Context, in wfmodel.RouteNarrationInput) (string, error) {
	f.gotArtworks = in.Artworks
	if f.err != nil {
		return "", f.err
	}
	return f.narration, nil
}

func (f *fakeNarrator) Farewell(_ context.Context, _ wfmodel.FarewellInput) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.farewell, nil
}

type recordingEvents struct {
	mu        sync.Mutex
	summaries []TourSummary
}

func (r *recordingEvents) TourCompleted(_ context.Context, s TourSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
	return nil
}

type harness struct {
	orch      *Orchestrator
	sessions  *memSessions
	retriever *fakeRetriever
	answers   *fakeAnswers
	narrator  *fakeNarrator
	events    *recordingEvents
}

const testLink = "https://example.org/museum"

func testArtworks() []*entity.Artwork {
	return []*entity.Artwork{
		{ID: "a1", Text: "Картина «Утро»", ImageRef: "images/a1.jpg"},
		{ID: "a2", Text: "Скульптура «Волна»"},
		{ID: "a3", Text: "Гравюра «Город»"},
	}
}

// newHarness 所有档位固定为 size 件展品
func newHarness(t *testing.T, size int) *harness {
	t.Helper()
	artworks := testArtworks()
	corpus, err := retrieval.NewCorpus(artworks)
	require.NoError(t, err)

	r := LengthRange{Min: size, Max: size}
	lengths, err := NewLengthSampler(r, r, r, rand.NewPCG(1, 2))
	require.NoError(t, err)

	h := &harness{
		sessions:  newMemSessions(),
		retriever: &fakeRetriever{artworks: artworks},
		answers:   &fakeAnswers{},
		narrator:  &fakeNarrator{narration: "Маршрут: «Утро», «Волна»! 🎨", farewell: "Спасибо за экскурсию!"},
		events:    &recordingEvents{},
	}
	h.orch = NewOrchestrator(Dependencies{
		Sessions:  h.sessions,
		Catalog:   corpus,
		Retriever: h.retriever,
		Answers:   h.answers,
		Narrator:  h.narrator,
		Lengths:   lengths,
		Events:    h.events,
	}, Options{
		CallTimeout:       time.Second,
		MessageChunkRunes: 4096,
		CaptionRunes:      1024,
		MuseumLink:        testLink,
	})
	return h
}

func (h *harness) send(t *testing.T, ev entity.Event) []entity.Outbound {
	t.Helper()
	if ev.UserID == "" {
		ev.UserID = "u1"
	}
	out, err := h.orch.Handle(context.Background(), ev)
	require.NoError(t, err)
	return out
}

func start() entity.Event { return entity.Event{Type: entity.EventStart} }

func text(s string) entity.Event { return entity.Event{Type: entity.EventText, Text: s} }

func button(tag entity.ButtonTag) entity.Event {
	return entity.Event{Type: entity.EventButton, Tag: tag}
}

func firstChunks(msgs []entity.Outbound) []string {
	var out []string
	for _, m := range msgs {
		if m.Type == entity.OutboundPhoto {
			out = append(out, m.Caption)
			continue
		}
		out = append(out, m.Chunks[0])
	}
	return out
}
