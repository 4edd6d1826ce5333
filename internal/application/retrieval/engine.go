package retrieval

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	apperrors "github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/tracer"
)

// tieSlack 向量检索额外多取的条数
const tieSlack = 16

// Engine 根据用户画像与查询从语料中挑选路线
type Engine struct {
	embedder embedding.Embedder
	index    VectorIndex
	corpus   *Corpus
	cache    EmbeddingCache
}

func NewEngine(embedder embedding.Embedder, index VectorIndex, corpus *Corpus, cache EmbeddingCache) *Engine {
	return &Engine{
		embedder: embedder,
		index:    index,
		corpus:   corpus,
		cache:    cache,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.index != nil
}

// ComposeQuery 将画像与查询合并为一次 embedding 的输入
func ComposeQuery(profile, query string) string {
	parts := make([]string, 0, 2)
	if p := strings.TrimSpace(profile); p != "" {
		parts = append(parts, p)
	}
	if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, q)
	}
	return strings.Join(parts, "\n")
}

// Retrieve 返回最多 k 个展品，按相似度降序，并列时按语料顺序。
// 语料不足 k 条时返回全部，不做填充；画像与查询都为空时按语料顺序返回前 k 条。
func (e *Engine) Retrieve(ctx context.Context, profile, query string, k int) ([]*entity.Artwork, error) {
	if k < 1 {
		return nil, ErrInvalidTopK
	}

	backend := "none"
	if e.index != nil {
		backend = e.index.Backend()
	}
	ctx, span := tracer.Start(ctx, "retrieval.Retrieve")
	span.SetAttributes(
		attribute.String("retrieval.backend", backend),
		attribute.Int("retrieval.top_k", k),
	)
	defer span.End()

	start := time.Now()
	out, err := e.retrieve(ctx, profile, query, k)
	metrics.RetrievalDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		tracer.RecordError(span, err)
		metrics.RetrievalTotal.WithLabelValues(backend, "error").Inc()
		return nil, err
	}
	metrics.RetrievalTotal.WithLabelValues(backend, "success").Inc()
	span.SetAttributes(attribute.Int("retrieval.results", len(out)))
	return out, nil
}

func (e *Engine) retrieve(ctx context.Context, profile, query string, k int) ([]*entity.Artwork, error) {
	if e.corpus.Len() == 0 {
		return []*entity.Artwork{}, nil
	}

	text := ComposeQuery(profile, query)
	if text == "" {
		logger.Debug(ctx, "empty retrieval query, falling back to corpus order", "top_k", k)
		return e.corpus.Head(k), nil
	}
	if !e.Enabled() {
		return nil, apperrors.Wrap(ErrVectorDisabled, apperrors.CodeRetrievalFailed, "retrieval is not configured")
	}

	vec, err := e.embedQuery(ctx, text)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "failed to embed retrieval query")
	}

	// 近似索引不按语料顺序处理同分，多取一些由 resolve 截断
	hits, err := e.index.Search(ctx, vec, min(k+tieSlack, e.corpus.Len()))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalFailed, "vector search failed")
	}
	return e.resolve(ctx, hits, k), nil
}

// resolve 将命中映射回语料记录，并重新施加确定性的排序
func (e *Engine) resolve(ctx context.Context, hits []VectorHit, k int) []*entity.Artwork {
	type ranked struct {
		pos   int
		score float32
	}
	seen := make(map[int]struct{}, len(hits))
	rs := make([]ranked, 0, len(hits))
	for _, h := range hits {
		pos := e.corpus.Position(h.ArtworkID)
		if pos < 0 {
			logger.Warn(ctx, "vector hit not found in corpus", "artwork_id", h.ArtworkID)
			continue
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		rs = append(rs, ranked{pos: pos, score: h.Score})
	}

	slices.SortStableFunc(rs, func(a, b ranked) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})
	if len(rs) > k {
		rs = rs[:k]
	}

	out := make([]*entity.Artwork, 0, len(rs))
	for _, r := range rs {
		out = append(out, e.corpus.records[r.pos])
	}
	return out
}

func (e *Engine) embedQuery(ctx context.Context, text string) ([]float32, error) {
	load := func(ctx context.Context) ([]float32, error) {
		return embedOne(ctx, e.embedder, text)
	}
	if e.cache == nil {
		return load(ctx)
	}
	return e.cache.GetOrLoad(ctx, text, load)
}

func embedOne(ctx context.Context, embedder embedding.Embedder, text string) ([]float32, error) {
	v64, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 || len(v64[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return toFloat32(v64[0]), nil
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out
}
