package retrieval

import (
	"context"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

// VectorIndex 定义应用层对“向量检索”的最小依赖（port）。
// 由基础设施层或内存索引提供具体实现。
type VectorIndex interface {
	Search(ctx context.Context, query []float32, topK int) ([]VectorHit, error)
	Backend() string
}

// VectorStore 可写入的向量库，供语料索引任务使用
type VectorStore interface {
	EnsureArtworksCollection(ctx context.Context, dim int) error
	UpsertArtworks(ctx context.Context, artworks []*entity.Artwork, positions []int) error
}

// VectorHit 单条命中，Score 越大越相似
type VectorHit struct {
	ArtworkID string
	Score     float32
}

// EmbeddingCache 查询向量缓存（可选）
type EmbeddingCache interface {
	GetOrLoad(ctx context.Context, text string, load func(ctx context.Context) ([]float32, error)) ([]float32, error)
}
