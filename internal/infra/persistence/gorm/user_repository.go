// Package gormpersistence 提供 repository 接口的 GORM/MySQL 实现。
package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository"
)

// GormUserRepository 是 UserRepository 接口的 GORM 实现。
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建 GormUserRepository 实例。
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id %d: %w", id, err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by username '%s': %w", username, err)
	}
	return &user, nil
}

// Save 保存用户信息（创建或更新）。唯一约束冲突映射为 ErrDuplicateEntry。
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	// Save 不触碰 many2many 关联，避免把空关联误写为清空
	err := r.db.WithContext(ctx).Omit("OwnedSongs", "DeckSongs").Save(user).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %d, username: %s): %w", user.ID, user.Username, err)
	}
	return nil
}

func (r *GormUserRepository) AddOwnedSongs(ctx context.Context, userID uint, songs []domain.Song) error {
	if len(songs) == 0 {
		return nil
	}
	user := domain.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).Association("OwnedSongs").Append(&songs); err != nil {
		return fmt.Errorf("gorm: append owned songs for user %d: %w", userID, err)
	}
	return nil
}

func (r *GormUserRepository) OwnedSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	var songs []domain.Song
	user := domain.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).Association("OwnedSongs").Find(&songs); err != nil {
		return nil, fmt.Errorf("gorm: load owned songs for user %d: %w", userID, err)
	}
	return songs, nil
}

func (r *GormUserRepository) OwnsSong(ctx context.Context, userID, songID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("user_songs").
		Where("user_id = ? AND song_id = ?", userID, songID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check song %d ownership for user %d: %w", songID, userID, err)
	}
	return count > 0, nil
}

// ReplaceDeck 在一个事务里整体替换牌组关联并更新牌组元数据。
func (r *GormUserRepository) ReplaceDeck(ctx context.Context, userID uint, name string, songs []domain.Song) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := domain.User{ID: userID}
		if err := tx.Model(&user).Association("DeckSongs").Replace(&songs); err != nil {
			return fmt.Errorf("gorm: replace deck songs for user %d: %w", userID, err)
		}
		updates := map[string]interface{}{
			"has_deck":        true,
			"deck_name":       name,
			"deck_updated_at": time.Now(),
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return fmt.Errorf("gorm: update deck metadata for user %d: %w", userID, err)
		}
		return nil
	})
}

func (r *GormUserRepository) DeckSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	var songs []domain.Song
	user := domain.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).Association("DeckSongs").Find(&songs); err != nil {
		return nil, fmt.Errorf("gorm: load deck songs for user %d: %w", userID, err)
	}
	return songs, nil
}

func (r *GormUserRepository) ClearDeck(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := domain.User{ID: userID}
		if err := tx.Model(&user).Association("DeckSongs").Clear(); err != nil {
			return fmt.Errorf("gorm: clear deck songs for user %d: %w", userID, err)
		}
		updates := map[string]interface{}{
			"has_deck":        false,
			"deck_name":       "My Deck",
			"deck_updated_at": time.Now(),
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return fmt.Errorf("gorm: reset deck metadata for user %d: %w", userID, err)
		}
		return nil
	})
}
