package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	apperrors "github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
)

func ids(records []*entity.Artwork) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func newTestEngine(t *testing.T, records []*entity.Artwork, vectors map[string][]float64) (*Engine, *fakeEmbedder) {
	t.Helper()
	corpus, err := NewCorpus(records)
	require.NoError(t, err)
	index, err := NewMemoryIndex(corpus)
	require.NoError(t, err)
	emb := &fakeEmbedder{vectors: vectors}
	return NewEngine(emb, index, corpus, nil), emb
}

func TestComposeQuery(t *testing.T) {
	assert.Equal(t, "profile\nquery", ComposeQuery(" profile ", "query"))
	assert.Equal(t, "query", ComposeQuery("", "query"))
	assert.Equal(t, "profile", ComposeQuery("profile", "  "))
	assert.Equal(t, "", ComposeQuery(" ", "\n"))
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	engine, emb := newTestEngine(t,
		[]*entity.Artwork{artwork("a", 1, 0), artwork("b", 0, 1), artwork("c", 0.7, 0.7)},
		map[string][]float64{"impressionism\ncolorful": {0, 1}},
	)

	got, err := engine.Retrieve(context.Background(), "impressionism", "colorful", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(got))
	assert.Equal(t, []string{"impressionism\ncolorful"}, emb.inputs)
}

func TestRetrieveBreaksTiesByCorpusOrder(t *testing.T) {
	engine, _ := newTestEngine(t,
		[]*entity.Artwork{artwork("z", 1, 0), artwork("y", 0, 1), artwork("x", 1, 0), artwork("w", 2, 0)},
		map[string][]float64{"q": {1, 0}},
	)

	got, err := engine.Retrieve(context.Background(), "", "q", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x", "w"}, ids(got))
}

func TestRetrieveIsDeterministic(t *testing.T) {
	records := []*entity.Artwork{
		artwork("a", 0.1, 0.9), artwork("b", 0.5, 0.5), artwork("c", 0.9, 0.1),
		artwork("d", 0.5, 0.5), artwork("e", 0.3, 0.7),
	}
	engine, _ := newTestEngine(t, records, map[string][]float64{"p\nq": {0.6, 0.4}})

	first, err := engine.Retrieve(context.Background(), "p", "q", 4)
	require.NoError(t, err)
	for range 10 {
		again, err := engine.Retrieve(context.Background(), "p", "q", 4)
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(again))
	}
}

func TestRetrieveReturnsWholeCorpusWhenKExceedsSize(t *testing.T) {
	engine, _ := newTestEngine(t,
		[]*entity.Artwork{artwork("a", 1, 0), artwork("b", 0, 1)},
		map[string][]float64{"q": {1, 1}},
	)

	got, err := engine.Retrieve(context.Background(), "", "q", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestRetrieveEmptyInputFallsBackToCorpusOrder(t *testing.T) {
	engine, emb := newTestEngine(t,
		[]*entity.Artwork{artwork("a", 0, 1), artwork("b", 1, 0), artwork("c", 1, 1)},
		nil,
	)

	got, err := engine.Retrieve(context.Background(), " ", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
	assert.Zero(t, emb.calls)
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	corpus, err := NewCorpus(nil)
	require.NoError(t, err)
	engine := NewEngine(&fakeEmbedder{}, nil, corpus, nil)

	got, err := engine.Retrieve(context.Background(), "p", "q", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveRejectsInvalidK(t *testing.T) {
	engine, _ := newTestEngine(t, []*entity.Artwork{artwork("a", 1)}, nil)
	_, err := engine.Retrieve(context.Background(), "p", "q", 0)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestRetrieveWrapsEmbeddingFailure(t *testing.T) {
	engine, emb := newTestEngine(t, []*entity.Artwork{artwork("a", 1)}, nil)
	emb.err = errors.New("upstream unavailable")

	_, err := engine.Retrieve(context.Background(), "p", "q", 1)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmbeddingFailed))
}

func TestRetrieveUsesEmbeddingCache(t *testing.T) {
	corpus, err := NewCorpus([]*entity.Artwork{artwork("a", 1, 0), artwork("b", 0, 1)})
	require.NoError(t, err)
	index, err := NewMemoryIndex(corpus)
	require.NoError(t, err)
	emb := &fakeEmbedder{vectors: map[string][]float64{"q": {0, 1}}}
	cache := &mapCache{data: map[string][]float32{}}
	engine := NewEngine(emb, index, corpus, cache)

	for range 3 {
		got, err := engine.Retrieve(context.Background(), "", "q", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(got))
	}
	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 1, cache.loads)
}

type staticIndex struct{ hits []VectorHit }

func (s staticIndex) Search(context.Context, []float32, int) ([]VectorHit, error) { return s.hits, nil }
func (staticIndex) Backend() string                                               { return "static" }

func TestResolveReordersExternalHits(t *testing.T) {
	corpus, err := NewCorpus([]*entity.Artwork{artwork("a"), artwork("b"), artwork("c")})
	require.NoError(t, err)
	index := staticIndex{hits: []VectorHit{
		{ArtworkID: "c", Score: 0.5},
		{ArtworkID: "ghost", Score: 0.9},
		{ArtworkID: "a", Score: 0.5},
		{ArtworkID: "c", Score: 0.5},
		{ArtworkID: "b", Score: 0.8},
	}}
	engine := NewEngine(&fakeEmbedder{vectors: map[string][]float64{"q": {1}}}, index, corpus, nil)

	got, err := engine.Retrieve(context.Background(), "", "q", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

// reversedTiesIndex 所有记录同分，按语料逆序返回前 topK 条
type reversedTiesIndex struct {
	ids  []string
	topK int
}

func (r *reversedTiesIndex) Search(_ context.Context, _ []float32, topK int) ([]VectorHit, error) {
	r.topK = topK
	hits := make([]VectorHit, 0, len(r.ids))
	for i := len(r.ids) - 1; i >= 0; i-- {
		hits = append(hits, VectorHit{ArtworkID: r.ids[i], Score: 0.7})
	}
	return hits[:min(topK, len(hits))], nil
}

func (*reversedTiesIndex) Backend() string { return "reversed" }

func TestRetrieveKeepsCorpusOrderForTiesAtCutoff(t *testing.T) {
	corpus, err := NewCorpus([]*entity.Artwork{artwork("a", 1), artwork("b", 1), artwork("c", 1), artwork("d", 1)})
	require.NoError(t, err)
	index := &reversedTiesIndex{ids: []string{"a", "b", "c", "d"}}
	engine := NewEngine(&fakeEmbedder{vectors: map[string][]float64{"q": {1}}}, index, corpus, nil)

	got, err := engine.Retrieve(context.Background(), "", "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
	assert.Equal(t, 4, index.topK)
}
