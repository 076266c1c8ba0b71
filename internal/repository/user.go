package repository

import (
	"context"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// UserRepository 定义了用户数据（含歌曲收藏和牌组关联）的存储和检索操作。
type UserRepository interface {
	// FindByID 根据用户 ID 查找用户。不存在时返回 ErrUserNotFound。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// FindByUsername 根据用户名查找用户。不存在时返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// Save 保存用户信息。唯一约束冲突时返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error

	// AddOwnedSongs 把歌曲追加到用户的收藏关联。
	AddOwnedSongs(ctx context.Context, userID uint, songs []domain.Song) error

	// OwnedSongs 返回用户收藏的全部歌曲。
	OwnedSongs(ctx context.Context, userID uint) ([]domain.Song, error)

	// OwnsSong 报告用户是否已拥有某首歌。
	OwnsSong(ctx context.Context, userID, songID uint) (bool, error)

	// ReplaceDeck 用给定歌曲整体替换用户的牌组并更新牌组元数据。
	ReplaceDeck(ctx context.Context, userID uint, name string, songs []domain.Song) error

	// DeckSongs 返回用户牌组中的歌曲。
	DeckSongs(ctx context.Context, userID uint) ([]domain.Song, error)

	// ClearDeck 清空用户牌组并复位牌组标记。
	ClearDeck(ctx context.Context, userID uint) error
}
