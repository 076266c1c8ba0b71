// Package domain 定义了应用程序中使用的数据结构 (数据库模型和游戏实体)。
package domain

import "time"

// User 表示应用程序中的用户。
type User struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"`
	Password string `gorm:"type:text;not null"` // 存储的是哈希后的密码，不能为空
	Email    string `gorm:"type:varchar(191);uniqueIndex:idx_email"`

	// 初始歌曲只能领取一次
	HasClaimedInitialSongs bool `gorm:"default:false"`

	// 用户拥有的歌曲集合 (通过购买或初始领取获得)
	OwnedSongs []Song `gorm:"many2many:user_songs"`

	// 每个用户只有一副牌组，牌组歌曲必须来自 OwnedSongs (由 Service 层保证)
	HasDeck       bool   `gorm:"default:false"`
	DeckName      string `gorm:"type:varchar(191);default:'My Deck'"`
	DeckSongs     []Song `gorm:"many2many:deck_songs"`
	DeckUpdatedAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
