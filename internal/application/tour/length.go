package tour

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

// LengthRange 导览长度区间（闭区间）
type LengthRange struct {
	Min int
	Max int
}

// LengthSampler 按选择的长度档位随机抽取展品数量
type LengthSampler struct {
	mu     sync.Mutex
	rng    *rand.Rand
	ranges map[entity.ButtonTag]LengthRange
}

// NewLengthSampler src 为 nil 时使用全局随机源
func NewLengthSampler(short, medium, long LengthRange, src rand.Source) (*LengthSampler, error) {
	ranges := map[entity.ButtonTag]LengthRange{
		entity.TagShort:  short,
		entity.TagMedium: medium,
		entity.TagLong:   long,
	}
	for tag, r := range ranges {
		if r.Min < 1 || r.Max < r.Min {
			return nil, fmt.Errorf("invalid tour length range for %s: [%d, %d]", tag, r.Min, r.Max)
		}
	}
	s := &LengthSampler{ranges: ranges}
	if src != nil {
		s.rng = rand.New(src)
	}
	return s, nil
}

// Sample 返回 [Min, Max] 内均匀分布的整数
func (s *LengthSampler) Sample(tag entity.ButtonTag) (int, error) {
	r, ok := s.ranges[tag]
	if !ok {
		return 0, fmt.Errorf("unknown tour length: %q", tag)
	}
	span := r.Max - r.Min + 1
	if s.rng == nil {
		return r.Min + rand.IntN(span), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Min + s.rng.IntN(span), nil
}

// Range 返回档位对应的区间
func (s *LengthSampler) Range(tag entity.ButtonTag) (LengthRange, bool) {
	r, ok := s.ranges[tag]
	return r, ok
}
