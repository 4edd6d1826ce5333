package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	domain "github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
)

const backendName = "milvus"

// ArtworkRepository 展品向量的写入与检索
type ArtworkRepository struct {
	client *Client
}

var (
	_ retrieval.VectorIndex = (*ArtworkRepository)(nil)
	_ retrieval.VectorStore = (*ArtworkRepository)(nil)
)

func NewArtworkRepository(client *Client) *ArtworkRepository {
	return &ArtworkRepository{client: client}
}

func (r *ArtworkRepository) Backend() string { return backendName }

func (r *ArtworkRepository) collection() string {
	return r.client.CollectionName(CollectionArtworks)
}

// EnsureArtworksCollection 集合不存在时创建集合与 HNSW 索引，随后加载。
// 不做 drop/rebuild 等破坏性操作。
func (r *ArtworkRepository) EnsureArtworksCollection(ctx context.Context, dim int) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return retrieval.ErrVectorDisabled
	}
	ctx, span := tracer.Start(ctx, "milvus.EnsureArtworksCollection",
		trace.WithAttributes(attribute.Int("dim", dim)))
	defer span.End()

	exists, err := r.client.HasCollection(ctx, CollectionArtworks)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		name := r.collection()
		if err := r.client.milvus.CreateCollection(ctx, ArtworksSchema(name, dim), entity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create collection: %w", err)
		}
		if err := r.createIndex(ctx); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return r.client.LoadCollection(ctx, CollectionArtworks)
}

func (r *ArtworkRepository) createIndex(ctx context.Context) error {
	cfg := r.client.config
	idx, err := entity.NewIndexHNSW(entity.COSINE, cfg.HNSWM, cfg.HNSWEfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := r.client.milvus.CreateIndex(ctx, r.collection(), fieldVector, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// UpsertArtworks 按 ID 覆盖写入展品向量
func (r *ArtworkRepository) UpsertArtworks(ctx context.Context, artworks []*domain.Artwork, positions []int) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return retrieval.ErrVectorDisabled
	}
	if len(artworks) != len(positions) {
		return fmt.Errorf("artworks and positions length mismatch: %d != %d", len(artworks), len(positions))
	}
	if len(artworks) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertArtworks",
		trace.WithAttributes(attribute.Int("count", len(artworks))))
	defer span.End()

	dim := len(artworks[0].Embedding)
	ids := make([]string, len(artworks))
	pos := make([]int64, len(artworks))
	vectors := make([][]float32, len(artworks))
	for i, a := range artworks {
		if len(a.Embedding) != dim {
			return fmt.Errorf("%w: artwork %s", retrieval.ErrDimensionMismatch, a.ID)
		}
		ids[i] = a.ID
		pos[i] = int64(positions[i])
		vectors[i] = a.Embedding
	}

	_, err := r.client.milvus.Upsert(ctx, r.collection(), "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnInt64(fieldPosition, pos),
		entity.NewColumnFloatVector(fieldVector, dim, vectors),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert artworks: %w", err)
	}
	if err := r.client.milvus.Flush(ctx, r.collection(), false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to flush artworks: %w", err)
	}
	return nil
}

// Search 余弦相似度检索，HNSW 为近似检索，返回条数可能少于 topK
func (r *ArtworkRepository) Search(ctx context.Context, query []float32, topK int) ([]retrieval.VectorHit, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, retrieval.ErrVectorDisabled
	}
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	start := time.Now()
	hits, err := r.search(ctx, query, topK)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.VectorSearchDuration.WithLabelValues(backendName, CollectionArtworks).Observe(time.Since(start).Seconds())
	metrics.VectorSearchTotal.WithLabelValues(backendName, CollectionArtworks, status).Inc()
	span.SetAttributes(attribute.Int("result_count", len(hits)))
	return hits, err
}

func (r *ArtworkRepository) search(ctx context.Context, query []float32, topK int) ([]retrieval.VectorHit, error) {
	// ef 不能小于 topK
	sp, err := entity.NewIndexHNSWSearchParam(max(128, topK))
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		r.collection(),
		nil,
		"",
		[]string{fieldID},
		[]entity.Vector{entity.FloatVector(query)},
		fieldVector,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []retrieval.VectorHit
	for _, result := range results {
		idCol, ok := result.Fields.GetColumn(fieldID).(*entity.ColumnVarChar)
		if !ok {
			return nil, fmt.Errorf("search result missing %s column", fieldID)
		}
		ids := idCol.Data()
		for i := 0; i < result.ResultCount; i++ {
			hits = append(hits, retrieval.VectorHit{ArtworkID: ids[i], Score: result.Scores[i]})
		}
	}
	return hits, nil
}
