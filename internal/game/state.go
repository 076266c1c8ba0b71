package game

import (
	"math/rand"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// handSize 是开局时发给每个成员的手牌数。
const handSize = 3

// State 是一个房间的权威游戏状态。它只被所属的 Room 持有，
// 所有变更都是同步的纯状态转移，不触碰任何传输层。
type State struct {
	// 成员手牌，key 为连接标识；手牌为空表示该成员已获胜
	hands map[string][]domain.Card

	// 所有成员入场时贡献的卡牌并集，作为共享抽牌池使用。
	// 注意：抽牌不会缩小该池，同一张卡可能被重复抽出（沿用原始设计）。
	allCards []domain.Card

	currentPlayer string
	topCard       *domain.Card
	winner        string
}

// Snapshot 是广播给房间成员的状态视图，字段形状与客户端约定一致。
type Snapshot struct {
	PlayerCards   map[string][]domain.Card `json:"playerCardsData"`
	CurrentPlayer string                   `json:"currentPlayer"`
	AllCards      []domain.Card            `json:"AllCards"`
	TopCard       *domain.Card             `json:"topCard"`
	Winner        string                   `json:"winner,omitempty"`
}

func newState() *State {
	return &State{
		hands:    make(map[string][]domain.Card),
		allCards: make([]domain.Card, 0),
	}
}

// seed 在成员加入时记录其手牌槽位，并把贡献的卡牌并入共享池。
func (s *State) seed(connID string, cards []domain.Card) {
	s.hands[connID] = append([]domain.Card(nil), cards...)
	s.allCards = append(s.allCards, cards...)
}

// start 执行 pending → active 转移：选定首个成员为当前玩家，
// 从共享池随机翻出中心牌，并给每个成员独立洗牌发出一副新手牌。
// 每个成员的手牌是对同一个共享池的独立采样，不同成员可能持有同一张卡
// （忠实保留原始实现的行为，见 DESIGN.md）。
func (s *State) start(members []string) error {
	if len(s.allCards) == 0 {
		return ErrEmptyCardPool
	}
	if len(members) > 0 {
		s.currentPlayer = members[0]
	}
	top := s.allCards[rand.Intn(len(s.allCards))]
	s.topCard = &top

	for _, connID := range members {
		shuffled := append([]domain.Card(nil), s.allCards...)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		n := handSize
		if n > len(shuffled) {
			n = len(shuffled)
		}
		s.hands[connID] = shuffled[:n]
	}
	return nil
}

// pull 从共享池均匀抽一张卡加入该成员手牌，并推进回合。
// 按原始设计，这里不校验是否轮到该成员（见 DESIGN.md）。
func (s *State) pull(connID string, members []string) error {
	hand, ok := s.hands[connID]
	if !ok {
		return ErrUnknownMember
	}
	if len(s.allCards) == 0 {
		return ErrEmptyCardPool
	}
	card := s.allCards[rand.Intn(len(s.allCards))]
	s.hands[connID] = append(hand, card)
	s.advanceTurn(members)
	return nil
}

// play 执行出牌：只有当前玩家可以出牌；从其手牌中移除恰好一张
// 与所选卡牌同 ID 的卡，将其置为中心牌，然后做胜负判定。
// 没有产生赢家时推进回合；产生赢家后状态进入终态，不再推进。
func (s *State) play(connID string, card domain.Card, members []string) (won bool, err error) {
	if connID != s.currentPlayer {
		return false, ErrNotYourTurn
	}
	hand, ok := s.hands[connID]
	if !ok {
		return false, ErrUnknownMember
	}
	idx := -1
	for i, c := range hand {
		if c.ID == card.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrCardNotInHand
	}
	s.hands[connID] = append(hand[:idx:idx], hand[idx+1:]...)
	s.topCard = &card

	if s.checkWin() {
		return true, nil
	}
	s.advanceTurn(members)
	return false, nil
}

// checkWin 扫描所有手牌，首个为空的手牌持有者被判为赢家。
// 单张移除规则下不可能同时出现多个空手牌。
func (s *State) checkWin() bool {
	for connID, hand := range s.hands {
		if len(hand) == 0 {
			s.winner = connID
			return true
		}
	}
	return false
}

// advanceTurn 把当前玩家指针推进到加入顺序中的下一个成员（环形）。
// 以调用时刻的成员顺序为准；成员变动后索引随之偏移。
func (s *State) advanceTurn(members []string) {
	if len(members) == 0 {
		s.currentPlayer = ""
		return
	}
	idx := 0
	for i, m := range members {
		if m == s.currentPlayer {
			idx = i
			break
		}
	}
	s.currentPlayer = members[(idx+1)%len(members)]
}

// removeMember 删除离开成员的手牌；若其正持有回合，
// 将当前玩家确定性地重置为剩余成员中的第一个。
func (s *State) removeMember(connID string, remaining []string) {
	delete(s.hands, connID)
	if s.currentPlayer == connID {
		if len(remaining) > 0 {
			s.currentPlayer = remaining[0]
		} else {
			s.currentPlayer = ""
		}
	}
}

// snapshot 返回状态的深拷贝视图，广播时不会与后续变更竞争。
func (s *State) snapshot() Snapshot {
	hands := make(map[string][]domain.Card, len(s.hands))
	for connID, hand := range s.hands {
		hands[connID] = append([]domain.Card(nil), hand...)
	}
	var top *domain.Card
	if s.topCard != nil {
		c := *s.topCard
		top = &c
	}
	return Snapshot{
		PlayerCards:   hands,
		CurrentPlayer: s.currentPlayer,
		AllCards:      append([]domain.Card(nil), s.allCards...),
		TopCard:       top,
		Winner:        s.winner,
	}
}
