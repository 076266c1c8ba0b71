package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository"
)

// GormSongRepository 是 SongRepository 接口的 GORM 实现。
type GormSongRepository struct {
	db *gorm.DB
}

// NewGormSongRepository 创建 GormSongRepository 实例。
func NewGormSongRepository(db *gorm.DB) *GormSongRepository {
	if db == nil {
		panic("database connection cannot be nil for GormSongRepository")
	}
	return &GormSongRepository{db: db}
}

func (r *GormSongRepository) FindByID(ctx context.Context, id uint) (*domain.Song, error) {
	var song domain.Song
	err := r.db.WithContext(ctx).First(&song, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSongNotFound
		}
		return nil, fmt.Errorf("gorm: find song by id %d: %w", id, err)
	}
	return &song, nil
}

func (r *GormSongRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Song, error) {
	if len(ids) == 0 {
		return []domain.Song{}, nil
	}
	var songs []domain.Song
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("gorm: find songs by ids: %w", err)
	}
	return songs, nil
}

func (r *GormSongRepository) FindAll(ctx context.Context) ([]domain.Song, error) {
	var songs []domain.Song
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("gorm: load song catalog: %w", err)
	}
	return songs, nil
}

// RandomSample 让数据库做随机抽样。目录规模在几千行以内，
// ORDER BY RAND() 的代价可以接受。
func (r *GormSongRepository) RandomSample(ctx context.Context, n int) ([]domain.Song, error) {
	if n <= 0 {
		return []domain.Song{}, nil
	}
	var songs []domain.Song
	if err := r.db.WithContext(ctx).Order("RAND()").Limit(n).Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("gorm: sample %d songs: %w", n, err)
	}
	return songs, nil
}
