package database

import (
	"context"
	"fmt"
	"log"

	"github.com/Mouaaaaadddd/quizmaster/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 仅在 persistence.driver = redis 时调用
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return rdb, nil
}
