package domain

import (
	"strconv"
	"time"
)

// Song 表示歌曲目录中的一首歌，是卡牌的数据来源。
type Song struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"type:varchar(191);not null" json:"title"`
	Artist     string `gorm:"type:varchar(191);not null" json:"artist"`
	Genre      string `gorm:"type:varchar(64);index" json:"genre"`
	Year       int    `json:"year"`
	DurationMS int    `json:"duration_ms"`

	// 对战属性，缺省时由 DeckService 在出牌数据中填充默认值
	Power   int    `gorm:"default:0" json:"power"`
	Defense int    `gorm:"default:0" json:"defense"`
	Rarity  string `gorm:"type:varchar(32);default:'common'" json:"rarity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// FormattedDuration 将毫秒时长格式化为 "N mins"，与前端展示保持一致。
func (s Song) FormattedDuration() string {
	minutes := s.DurationMS / 60000
	seconds := (s.DurationMS % 60000) / 1000
	if seconds >= 30 {
		minutes++
	}
	return strconv.Itoa(minutes) + " mins"
}
