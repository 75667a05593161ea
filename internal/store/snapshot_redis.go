package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"

	"github.com/go-redis/redis/v8"
)

// RedisSnapshotStore 单个 Redis 键承载全量快照
type RedisSnapshotStore struct {
	rdb *redis.Client
	key string
}

func NewRedisSnapshotStore(rdb *redis.Client, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{rdb: rdb, key: key}
}

func (r *RedisSnapshotStore) Load(ctx context.Context) (map[string]*model.DocumentSession, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return map[string]*model.DocumentSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot key %s: %w", r.key, err)
	}

	sessions := map[string]*model.DocumentSession{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse snapshot key %s: %w", r.key, err)
	}
	return sessions, nil
}

func (r *RedisSnapshotStore) Save(ctx context.Context, sessions map[string]*model.DocumentSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	// 不设过期：会话只能被用户显式删除
	return r.rdb.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSnapshotStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
