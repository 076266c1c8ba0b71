package domain

// Card 是一局游戏中流转的卡牌数据，由客户端在 joinRoom 时携带。
// 它不落库，字段形状与前端卡牌组件保持一致。
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Genre    string `json:"genre"`
	Playtime int    `json:"playtime"`
	Year     int    `json:"year"`
}
