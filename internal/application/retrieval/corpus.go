package retrieval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

// Corpus 展品语料。加载后只读，可在所有会话间无锁共享；
// 记录的插入顺序即检索时的并列排序依据。
type Corpus struct {
	records  []*entity.Artwork
	position map[string]int
}

func NewCorpus(records []*entity.Artwork) (*Corpus, error) {
	c := &Corpus{
		records:  make([]*entity.Artwork, 0, len(records)),
		position: make(map[string]int, len(records)),
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("corpus record %d is nil", i)
		}
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("corpus record %d: id is required", i)
		}
		if strings.TrimSpace(r.Text) == "" {
			return nil, fmt.Errorf("corpus record %q: text is required", id)
		}
		if _, dup := c.position[id]; dup {
			return nil, fmt.Errorf("corpus record %q: duplicate id", id)
		}
		rec := *r
		rec.ID = id
		c.position[id] = len(c.records)
		c.records = append(c.records, &rec)
	}
	return c, nil
}

// LoadCorpusFile 读取 JSON 数组格式的语料文件
func LoadCorpusFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	var records []*entity.Artwork
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode corpus %s: %w", path, err)
	}
	return NewCorpus(records)
}

// WriteCorpusFile 以临时文件加重命名的方式写回语料
func WriteCorpusFile(path string, c *Corpus) error {
	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".corpus-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

func (c *Corpus) ByID(id string) (*entity.Artwork, bool) {
	if c == nil {
		return nil, false
	}
	pos, ok := c.position[id]
	if !ok {
		return nil, false
	}
	return c.records[pos], true
}

// Position 记录在语料中的插入位置，不存在时返回 -1
func (c *Corpus) Position(id string) int {
	if c == nil {
		return -1
	}
	pos, ok := c.position[id]
	if !ok {
		return -1
	}
	return pos
}

// Head 按语料顺序返回前 k 条
func (c *Corpus) Head(k int) []*entity.Artwork {
	k = min(k, c.Len())
	out := make([]*entity.Artwork, k)
	copy(out, c.records[:k])
	return out
}

// Records 返回全部记录（切片为副本，记录本身只读）
func (c *Corpus) Records() []*entity.Artwork {
	return c.Head(c.Len())
}

// Missing 返回尚未生成向量的记录
func (c *Corpus) Missing() []*entity.Artwork {
	var out []*entity.Artwork
	for _, r := range c.records {
		if !r.HasEmbedding() {
			out = append(out, r)
		}
	}
	return out
}

// WithEmbeddings 返回替换了向量的新语料，原语料不变
func (c *Corpus) WithEmbeddings(vectors map[string][]float32) (*Corpus, error) {
	next := make([]*entity.Artwork, 0, c.Len())
	for _, r := range c.records {
		rec := *r
		if v, ok := vectors[r.ID]; ok {
			rec.Embedding = v
		}
		next = append(next, &rec)
	}
	return NewCorpus(next)
}

// Dimension 返回语料向量维度，并校验所有记录维度一致
func (c *Corpus) Dimension() (int, error) {
	dim := 0
	for _, r := range c.records {
		if !r.HasEmbedding() {
			return 0, fmt.Errorf("%w: %s", ErrCorpusNotEmbedded, r.ID)
		}
		if dim == 0 {
			dim = len(r.Embedding)
			continue
		}
		if len(r.Embedding) != dim {
			return 0, fmt.Errorf("%w: %s has %d, want %d", ErrDimensionMismatch, r.ID, len(r.Embedding), dim)
		}
	}
	return dim, nil
}
