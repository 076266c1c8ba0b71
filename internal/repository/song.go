package repository

import (
	"context"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// SongRepository 定义了歌曲目录的检索操作。目录本身由后台导入维护，
// 应用只读。
type SongRepository interface {
	// FindByID 根据歌曲 ID 查找歌曲。不存在时返回 ErrSongNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Song, error)

	// FindByIDs 根据一组 ID 批量查找歌曲，缺失的 ID 被静默跳过。
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Song, error)

	// FindAll 返回完整目录。
	FindAll(ctx context.Context) ([]domain.Song, error)

	// RandomSample 均匀抽取 n 首歌曲（目录不足 n 首时全部返回）。
	RandomSample(ctx context.Context, n int) ([]domain.Song, error)
}
