// Package rediscache 提供基于 Redis 的缓存实现。
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository"
)

// RedisCatalogCache 把完整歌曲目录以 JSON 形式缓存在单个 Redis key 下。
type RedisCatalogCache struct {
	client *redis.Client
	key    string
}

// NewRedisCatalogCache 创建 RedisCatalogCache 实例。keyPrefix 用于
// 多环境共用一个 Redis 实例时隔离 key 空间。
func NewRedisCatalogCache(client *redis.Client, keyPrefix string) *RedisCatalogCache {
	if client == nil {
		panic("redis client cannot be nil for RedisCatalogCache")
	}
	return &RedisCatalogCache{
		client: client,
		key:    keyPrefix + "catalog:songs",
	}
}

func (c *RedisCatalogCache) GetSongList(ctx context.Context) ([]domain.Song, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis: get song catalog: %w", err)
	}
	var songs []domain.Song
	if err := json.Unmarshal(payload, &songs); err != nil {
		// 损坏的缓存按未命中处理，下一次写入会覆盖
		return nil, repository.ErrCacheMiss
	}
	return songs, nil
}

func (c *RedisCatalogCache) SetSongList(ctx context.Context, songs []domain.Song, ttl time.Duration) error {
	payload, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("redis: marshal song catalog: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set song catalog: %w", err)
	}
	return nil
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis: invalidate song catalog: %w", err)
	}
	return nil
}
