package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/avalon/internal/game/snapshot"
)

const (
	// Redis key 前缀
	gameKeyPrefix = "avalon:game:"

	// 快照过期时间，对局结束后无人续期自动清理
	snapshotExpiration = 24 * time.Hour
)

// RedisStore Redis 快照存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 快照存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func gameKey(gameID string) string {
	return gameKeyPrefix + gameID
}

// Save 序列化快照并写入 Redis
func (s *RedisStore) Save(ctx context.Context, gameID string, snap *snapshot.Game) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, gameKey(gameID), data, snapshotExpiration).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}

// Load 从 Redis 读取并反序列化快照
func (s *RedisStore) Load(ctx context.Context, gameID string) (*snapshot.Game, error) {
	data, err := s.client.Get(ctx, gameKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("snapshot not found: %s", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Delete 删除快照
func (s *RedisStore) Delete(ctx context.Context, gameID string) error {
	return s.client.Del(ctx, gameKey(gameID)).Err()
}

// List 列出所有已保存对局的 id
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, gameKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(gameKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
