// Package memory 提供进程内会话存储，单实例部署使用
package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/repository"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
)

// SessionStore 基于 go-cache，存取时复制会话，调用方修改不影响已保存状态
type SessionStore struct {
	cache *cache.Cache
}

var _ repository.SessionRepository = (*SessionStore)(nil)

// NewSessionStore cleanupInterval 为 0 时不启动后台清理
func NewSessionStore(ttl, cleanupInterval time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s := &SessionStore{cache: cache.New(ttl, cleanupInterval)}
	s.cache.OnEvicted(func(string, interface{}) {
		metrics.ActiveSessions.Set(float64(s.cache.ItemCount()))
	})
	return s
}

func (s *SessionStore) Get(_ context.Context, userID string) (*entity.TourSession, error) {
	x, found := s.cache.Get(userID)
	if !found {
		return nil, nil
	}
	return x.(*entity.TourSession).Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, sess *entity.TourSession) error {
	s.cache.Set(sess.UserID, sess.Clone(), cache.DefaultExpiration)
	metrics.ActiveSessions.Set(float64(s.cache.ItemCount()))
	return nil
}

func (s *SessionStore) Delete(_ context.Context, userID string) error {
	s.cache.Delete(userID)
	return nil
}

// Len 当前未过期的会话数
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
