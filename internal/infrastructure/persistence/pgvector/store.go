// Package pgvector 提供基于 PostgreSQL + pgvector 的展品向量检索
package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/config"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
)

const backendName = "pgvector"

var tracer = otel.Tracer("pgvector")

// Store 展品向量表，列为 id / position / embedding
type Store struct {
	pool  *pgxpool.Pool
	table string
	sql   statements
}

var (
	_ retrieval.VectorIndex = (*Store)(nil)
	_ retrieval.VectorStore = (*Store)(nil)
)

func NewStore(ctx context.Context, cfg *config.PgvectorConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid pgvector dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "artworks"
	}
	return &Store{pool: pool, table: table, sql: newStatements(table)}, nil
}

func (s *Store) Backend() string { return backendName }

func (s *Store) Close() {
	s.pool.Close()
}

// HealthCheck 健康检查
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// EnsureArtworksCollection 创建扩展、表与 HNSW 索引（均为 IF NOT EXISTS）
func (s *Store) EnsureArtworksCollection(ctx context.Context, dim int) error {
	ctx, span := tracer.Start(ctx, "pgvector.EnsureArtworksCollection",
		trace.WithAttributes(attribute.String("table", s.table), attribute.Int("dim", dim)))
	defer span.End()

	for _, stmt := range s.sql.schema(dim) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to prepare %s: %w", s.table, err)
		}
	}
	return nil
}

// UpsertArtworks 单个批次内按 ID 覆盖写入
func (s *Store) UpsertArtworks(ctx context.Context, artworks []*entity.Artwork, positions []int) error {
	if len(artworks) != len(positions) {
		return fmt.Errorf("artworks and positions length mismatch: %d != %d", len(artworks), len(positions))
	}
	if len(artworks) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "pgvector.UpsertArtworks",
		trace.WithAttributes(attribute.Int("count", len(artworks))))
	defer span.End()

	batch := &pgx.Batch{}
	for i, a := range artworks {
		batch.Queue(s.sql.upsert, a.ID, positions[i], pgv.NewVector(a.Embedding))
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert artworks: %w", err)
	}
	return nil
}

// Search 余弦距离升序，同距离按语料顺序
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]retrieval.VectorHit, error) {
	ctx, span := tracer.Start(ctx, "pgvector.Search",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	start := time.Now()
	hits, err := s.search(ctx, query, topK)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.VectorSearchDuration.WithLabelValues(backendName, s.table).Observe(time.Since(start).Seconds())
	metrics.VectorSearchTotal.WithLabelValues(backendName, s.table, status).Inc()
	span.SetAttributes(attribute.Int("result_count", len(hits)))
	return hits, err
}

func (s *Store) search(ctx context.Context, query []float32, topK int) ([]retrieval.VectorHit, error) {
	rows, err := s.pool.Query(ctx, s.sql.search, pgv.NewVector(query), topK)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var hits []retrieval.VectorHit
	for rows.Next() {
		var (
			id    string
			score float64
		)
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		hits = append(hits, retrieval.VectorHit{ArtworkID: id, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hits: %w", err)
	}
	return hits, nil
}
