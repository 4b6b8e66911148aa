package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	eventKeyPrefix = "billing:webhook:event:"
	defaultTTL     = 72 * time.Hour
)

// Store 记录已处理的 Webhook 事件 ID，用于跳过重复投递。
// 数据库唯一约束仍是最终保障，Store 只减少重复的网关调用。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore ttl <= 0 时使用默认值
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Seen 事件是否已处理过
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	n, err := s.rdb.Exists(ctx, eventKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return n > 0, nil
}

// Mark 标记事件已处理，返回 false 表示此前已被标记
func (s *Store) Mark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	ok, err := s.rdb.SetNX(ctx, eventKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event: %w", err)
	}
	return ok, nil
}
