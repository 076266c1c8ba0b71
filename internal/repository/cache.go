package repository

import (
	"context"
	"time"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// CatalogCache 定义了歌曲目录的缓存操作，通常由 Redis 实现。
// 目录变化很少，列表端点的读放大适合用带 TTL 的整表缓存吸收。
type CatalogCache interface {
	// GetSongList 获取缓存的目录。未命中时返回 ErrCacheMiss。
	GetSongList(ctx context.Context) ([]domain.Song, error)

	// SetSongList 缓存目录，ttl 为缓存生存时间。
	SetSongList(ctx context.Context, songs []domain.Song, ttl time.Duration) error

	// Invalidate 丢弃缓存的目录。
	Invalidate(ctx context.Context) error
}
