package retrieval

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
)

// MemoryIndex 进程内暴力余弦检索，适合几千条以内的展品语料
type MemoryIndex struct {
	corpus *Corpus
	dim    int
	norms  []float64
}

func NewMemoryIndex(corpus *Corpus) (*MemoryIndex, error) {
	dim, err := corpus.Dimension()
	if err != nil {
		return nil, err
	}
	norms := make([]float64, corpus.Len())
	for i, r := range corpus.records {
		norms[i] = norm(r.Embedding)
	}
	return &MemoryIndex{corpus: corpus, dim: dim, norms: norms}, nil
}

func (m *MemoryIndex) Backend() string { return "memory" }

type scored struct {
	pos   int
	score float64
}

// Search 返回 topK 条命中，分数降序，分数相同按语料顺序
func (m *MemoryIndex) Search(_ context.Context, query []float32, topK int) ([]VectorHit, error) {
	if topK < 1 {
		return nil, ErrInvalidTopK
	}
	n := m.corpus.Len()
	if n == 0 {
		return nil, nil
	}
	if len(query) != m.dim {
		return nil, fmt.Errorf("%w: query has %d, corpus has %d", ErrDimensionMismatch, len(query), m.dim)
	}

	qn := norm(query)
	all := make([]scored, n)
	for i, r := range m.corpus.records {
		all[i] = scored{pos: i, score: cosine(query, qn, r.Embedding, m.norms[i])}
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	topK = min(topK, n)
	hits := make([]VectorHit, 0, topK)
	for _, s := range all[:topK] {
		hits = append(hits, VectorHit{
			ArtworkID: m.corpus.records[s.pos].ID,
			Score:     float32(s.score),
		})
	}
	return hits, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine 零向量与任何向量的相似度记为 0
func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
