package wire

import (
	"context"
	"fmt"
	"time"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/answer"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/tour"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/config"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/repository"
	infraembedding "github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/embedding"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/messaging"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/persistence/memory"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/persistence/milvus"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/persistence/pgvector"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/persistence/redis"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/interfaces/http/handler"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/interfaces/http/middleware"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/chain"
	workflowport "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/port"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

const sessionCleanupInterval = 10 * time.Minute

// VectorBackend 已连接的外部向量库，memory 后端时除 Name 外均为空
type VectorBackend struct {
	Name    string
	Index   retrieval.VectorIndex
	Store   retrieval.VectorStore
	Checker handler.HealthChecker
}

// ProvideCorpus 加载展品语料
func ProvideCorpus(cfg *config.Config) (*retrieval.Corpus, error) {
	corpus, err := retrieval.LoadCorpusFile(cfg.Guide.CorpusPath)
	if err != nil {
		return nil, err
	}
	logger.Info(context.Background(), "corpus loaded", "path", cfg.Guide.CorpusPath, "artworks", corpus.Len())
	return corpus, nil
}

// ProvideRedisClient 提供 Redis 客户端，未启用时返回 nil
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideSessionStore 按配置选择会话存储
func ProvideSessionStore(cfg *config.Config, client *redis.Client) (repository.SessionRepository, error) {
	switch cfg.Guide.SessionBackend {
	case config.SessionBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("session backend redis requires redis client")
		}
		return redis.NewSessionStore(client, cfg.Guide.SessionTTL), nil
	default:
		return memory.NewSessionStore(cfg.Guide.SessionTTL, sessionCleanupInterval), nil
	}
}

// ProvideEmbedder 提供查询向量化能力
func ProvideEmbedder(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	return infraembedding.NewEmbedder(ctx, &cfg.Embedding)
}

// ProvideEmbeddingCache Redis 可用且配置了 TTL 时缓存查询向量
func ProvideEmbeddingCache(cfg *config.Config, client *redis.Client) retrieval.EmbeddingCache {
	if client == nil || cfg.Cache.Redis.EmbeddingTTL <= 0 {
		return nil
	}
	return redis.NewEmbeddingCache(client, cfg.Embedding.Model, cfg.Cache.Redis.EmbeddingTTL)
}

// ProvideVectorBackend 按配置连接外部向量库，memory 后端返回空的 VectorBackend
func ProvideVectorBackend(ctx context.Context, cfg *config.Config) (*VectorBackend, func(), error) {
	switch cfg.Vector.Backend {
	case config.VectorBackendMilvus:
		client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
		if err != nil {
			return nil, nil, err
		}
		repo := milvus.NewArtworkRepository(client)
		cleanup := func() {
			_ = client.Close()
		}
		return &VectorBackend{Name: repo.Backend(), Index: repo, Store: repo, Checker: client}, cleanup, nil

	case config.VectorBackendPgvector:
		store, err := pgvector.NewStore(ctx, &cfg.Vector.Pgvector)
		if err != nil {
			return nil, nil, err
		}
		return &VectorBackend{Name: store.Backend(), Index: store, Store: store, Checker: store}, store.Close, nil

	default:
		return &VectorBackend{Name: config.VectorBackendMemory}, func() {}, nil
	}
}

// ProvideVectorIndex 外部向量库优先，否则在语料上建内存索引
func ProvideVectorIndex(backend *VectorBackend, corpus *retrieval.Corpus) (retrieval.VectorIndex, error) {
	if backend.Index != nil {
		return backend.Index, nil
	}
	return retrieval.NewMemoryIndex(corpus)
}

// ProvideRetrievalEngine 组装检索引擎
func ProvideRetrievalEngine(embedder einoembedding.Embedder, index retrieval.VectorIndex, corpus *retrieval.Corpus, cache retrieval.EmbeddingCache) *retrieval.Engine {
	return retrieval.NewEngine(embedder, index, corpus, cache)
}

// ProvideIndexer 语料索引任务，memory 后端只补齐向量
func ProvideIndexer(cfg *config.Config, embedder einoembedding.Embedder, backend *VectorBackend) *retrieval.Indexer {
	return retrieval.NewIndexer(embedder, backend.Store, cfg.Embedding.BatchSize, 0)
}

// ProvideGuide 提供导览 LLM 能力
func ProvideGuide(factory workflowport.ChatModelFactory, cfg *config.Config) *chain.Guide {
	return chain.NewGuide(factory, chain.GuideOptions{
		Provider:          cfg.LLM.DefaultProvider,
		ConciseMaxTokens:  cfg.Guide.ConciseMaxTokens,
		ExpandedMaxTokens: cfg.Guide.ExpandedMaxTokens,
	})
}

// ProvidePublisher 审计与导览事件流，未启用时返回 nil
func ProvidePublisher(cfg *config.Config, client *redis.Client) *messaging.GuidePublisher {
	rs := cfg.Messaging.RedisStream
	if !rs.Enabled || client == nil {
		return nil
	}
	maxLen := rs.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	producer := messaging.NewProducer(client.Redis(), int64(maxLen))
	return messaging.NewGuidePublisher(producer, rs.AuditStream, rs.TourStream)
}

// ProvideAnswerPipeline 组装回答流水线
func ProvideAnswerPipeline(cfg *config.Config, guide *chain.Guide, publisher *messaging.GuidePublisher) *answer.Pipeline {
	var audit answer.AuditSink
	if publisher != nil && cfg.Guide.AuditEnabled {
		audit = publisher
	}
	return answer.NewPipeline(guide, guide, audit)
}

// ProvideLengthSampler 导览长度采样器
func ProvideLengthSampler(cfg *config.Config) (*tour.LengthSampler, error) {
	l := cfg.Guide.TourLengths
	return tour.NewLengthSampler(
		tour.LengthRange{Min: l.Short.Min, Max: l.Short.Max},
		tour.LengthRange{Min: l.Medium.Min, Max: l.Medium.Max},
		tour.LengthRange{Min: l.Long.Min, Max: l.Long.Max},
		nil,
	)
}

// ProvideOrchestrator 组装会话编排器
func ProvideOrchestrator(
	cfg *config.Config,
	sessions repository.SessionRepository,
	corpus *retrieval.Corpus,
	engine *retrieval.Engine,
	pipeline *answer.Pipeline,
	guide *chain.Guide,
	lengths *tour.LengthSampler,
	publisher *messaging.GuidePublisher,
) *tour.Orchestrator {
	var events tour.TourEventSink
	if publisher != nil {
		events = publisher
	}
	return tour.NewOrchestrator(tour.Dependencies{
		Sessions:  sessions,
		Catalog:   corpus,
		Retriever: engine,
		Answers:   pipeline,
		Narrator:  guide,
		Lengths:   lengths,
		Events:    events,
	}, tour.Options{
		CallTimeout:       cfg.Guide.CallTimeout,
		MessageChunkRunes: cfg.Guide.MessageChunkRunes,
		CaptionRunes:      cfg.Guide.CaptionRunes,
		MuseumLink:        cfg.Guide.MuseumLink,
	})
}

// ProvideHealthHandler 就绪检查覆盖已启用的外部依赖
func ProvideHealthHandler(cfg *config.Config, client *redis.Client, backend *VectorBackend) *handler.HealthHandler {
	checks := map[string]handler.HealthChecker{}
	if client != nil {
		checks["redis"] = client
	}
	if backend.Checker != nil {
		checks[backend.Name] = backend.Checker
	}
	return handler.NewHealthHandler(cfg.App.Version, checks)
}

// ProvideRateLimiter 限流依赖 Redis，未启用时不限流
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}
