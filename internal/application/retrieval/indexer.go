package retrieval

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"golang.org/x/sync/errgroup"

	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

const (
	defaultEmbeddingBatch = 32
	defaultConcurrency    = 4
	upsertBatch           = 256
)

// Indexer 为语料补齐向量，并同步到外部向量库
type Indexer struct {
	embedder embedding.Embedder
	store    VectorStore

	embeddingBatchSize int
	concurrency        int
}

func NewIndexer(embedder embedding.Embedder, store VectorStore, embeddingBatchSize, concurrency int) *Indexer {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Indexer{
		embedder:           embedder,
		store:              store,
		embeddingBatchSize: bs,
		concurrency:        concurrency,
	}
}

// EmbedMissing 为缺少向量的记录生成向量，返回新语料和新生成的条数
func (i *Indexer) EmbedMissing(ctx context.Context, c *Corpus) (*Corpus, int, error) {
	missing := c.Missing()
	if len(missing) == 0 {
		return c, 0, nil
	}
	if i.embedder == nil {
		return nil, 0, ErrVectorDisabled
	}

	texts := make([]string, len(missing))
	for idx, r := range missing {
		texts[idx] = r.Text
	}
	vectors, err := i.embedBatch(ctx, texts)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string][]float32, len(missing))
	for idx, r := range missing {
		byID[r.ID] = vectors[idx]
	}
	next, err := c.WithEmbeddings(byID)
	if err != nil {
		return nil, 0, err
	}
	logger.Info(ctx, "corpus embeddings generated", "count", len(missing))
	return next, len(missing), nil
}

// Sync 将语料写入向量库，语料必须已全部带有向量
func (i *Indexer) Sync(ctx context.Context, c *Corpus) error {
	if i.store == nil {
		return ErrVectorDisabled
	}
	dim, err := c.Dimension()
	if err != nil {
		return err
	}
	if err := i.store.EnsureArtworksCollection(ctx, dim); err != nil {
		return err
	}

	records := c.Records()
	for start := 0; start < len(records); start += upsertBatch {
		end := min(start+upsertBatch, len(records))
		positions := make([]int, 0, end-start)
		for pos := start; pos < end; pos++ {
			positions = append(positions, pos)
		}
		if err := i.store.UpsertArtworks(ctx, records[start:end], positions); err != nil {
			return fmt.Errorf("upsert artworks [%d, %d): %w", start, end, err)
		}
	}
	logger.Info(ctx, "corpus synced to vector store", "count", len(records), "dimension", dim)
	return nil
}

// embedBatch 分批并发调用 embedder，结果顺序与输入一致
func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := min(start+i.embeddingBatchSize, len(texts))
		g.Go(func() error {
			v64, err := i.embedder.EmbedStrings(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d, %d): %w", start, end, err)
			}
			if len(v64) != end-start {
				return fmt.Errorf("embed batch [%d, %d): got %d vectors", start, end, len(v64))
			}
			for j, vec := range v64 {
				if len(vec) == 0 {
					return fmt.Errorf("%w at %d", ErrEmptyEmbedding, start+j)
				}
				out[start+j] = toFloat32(vec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

