package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// EmbeddingCache 缓存查询文本的向量，键由模型名和文本哈希组成
type EmbeddingCache struct {
	client *Client
	model  string
	ttl    time.Duration
	group  singleflight.Group
}

var _ retrieval.EmbeddingCache = (*EmbeddingCache)(nil)

func NewEmbeddingCache(client *Client, model string, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{client: client, model: model, ttl: ttl}
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("guide:emb:%s:%s", c.model, hex.EncodeToString(sum[:]))
}

// GetOrLoad 读穿缓存，并发未命中合并为一次加载。
// 缓存读写失败只记录日志，不影响返回结果。
func (c *EmbeddingCache) GetOrLoad(ctx context.Context, text string, load func(ctx context.Context) ([]float32, error)) ([]float32, error) {
	key := c.key(text)
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if vec, ok := c.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return vec, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		if vec, ok := c.lookup(ctx, key); ok {
			return vec, nil
		}

		vec, err := load(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(vec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal embedding: %w", err)
		}
		if err := c.client.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			span.RecordError(err)
			logger.Warn(ctx, "failed to cache embedding", "error", err.Error())
		}
		return vec, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result.([]float32), nil
}

func (c *EmbeddingCache) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !IsNil(err) {
			metrics.EmbeddingCacheTotal.WithLabelValues("error").Inc()
			logger.Warn(ctx, "embedding cache read failed", "error", err.Error())
		}
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil || len(vec) == 0 {
		return nil, false
	}
	return vec, true
}
