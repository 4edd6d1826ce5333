package retrieval

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	err     error
	calls   int
	inputs  []string
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, texts...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, 0, len(texts))
	for _, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, errors.New("no vector for " + t)
		}
		out = append(out, v)
	}
	return out, nil
}

type fakeStore struct {
	dim       int
	ids       []string
	positions []int
}

func (s *fakeStore) EnsureArtworksCollection(_ context.Context, dim int) error {
	s.dim = dim
	return nil
}

func (s *fakeStore) UpsertArtworks(_ context.Context, artworks []*entity.Artwork, positions []int) error {
	for _, a := range artworks {
		s.ids = append(s.ids, a.ID)
	}
	s.positions = append(s.positions, positions...)
	return nil
}

type mapCache struct {
	data  map[string][]float32
	loads int
}

func (c *mapCache) GetOrLoad(ctx context.Context, text string, load func(ctx context.Context) ([]float32, error)) ([]float32, error) {
	if v, ok := c.data[text]; ok {
		return v, nil
	}
	c.loads++
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.data[text] = v
	return v, nil
}

func artwork(id string, vec ...float32) *entity.Artwork {
	return &entity.Artwork{ID: id, Text: "text of " + id, Embedding: vec}
}
