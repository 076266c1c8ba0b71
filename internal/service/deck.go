package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository"
)

// Deck 是用户牌组的服务层视图。
type Deck struct {
	Name  string        `json:"name"`
	Songs []domain.Song `json:"songs"`
}

// MatchCard 是进入对局的卡牌数据，缺省对战属性在这里补齐。
type MatchCard struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Genre   string `json:"genre"`
	Year    int    `json:"year"`
	Power   int    `json:"power"`
	Defense int    `json:"defense"`
	Rarity  string `json:"rarity"`
}

// DeckService 负责用户牌组的业务逻辑。每个用户只有一副牌组。
type DeckService struct {
	userRepo repository.UserRepository
}

// NewDeckService 创建 DeckService 实例。
func NewDeckService(userRepo repository.UserRepository) *DeckService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for DeckService")
	}
	return &DeckService{userRepo: userRepo}
}

// GetDeck 返回用户的牌组。从未保存过牌组时返回 ErrDeckNotFound。
func (s *DeckService) GetDeck(ctx context.Context, userID uint) (*Deck, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasDeck {
		return nil, ErrDeckNotFound
	}
	songs, err := s.userRepo.DeckSongs(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load deck songs")
		return nil, ErrInternalServer
	}
	return &Deck{Name: user.DeckName, Songs: songs}, nil
}

// SaveDeck 创建或整体替换用户的牌组。牌组歌曲必须来自用户收藏。
func (s *DeckService) SaveDeck(ctx context.Context, userID uint, name string, songIDs []uint) (*Deck, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_name": name})

	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	owned, err := s.userRepo.OwnedSongs(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load owned songs for deck validation")
		return nil, ErrInternalServer
	}
	ownedByID := make(map[uint]domain.Song, len(owned))
	for _, song := range owned {
		ownedByID[song.ID] = song
	}

	deckSongs := make([]domain.Song, 0, len(songIDs))
	for _, id := range songIDs {
		song, ok := ownedByID[id]
		if !ok {
			logCtx.WithField("song_id", id).Warn("Deck save rejected: song not owned")
			return nil, ErrSongNotOwned
		}
		deckSongs = append(deckSongs, song)
	}

	if err := s.userRepo.ReplaceDeck(ctx, userID, name, deckSongs); err != nil {
		logCtx.WithError(err).Error("Failed to persist deck")
		return nil, ErrInternalServer
	}

	logCtx.WithField("songs", len(deckSongs)).Info("Deck saved")
	return &Deck{Name: name, Songs: deckSongs}, nil
}

// DeleteDeck 清空用户的牌组。
func (s *DeckService) DeleteDeck(ctx context.Context, userID uint) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasDeck {
		return ErrDeckNotFound
	}
	if err := s.userRepo.ClearDeck(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to clear deck")
		return ErrInternalServer
	}
	logrus.WithField("user_id", userID).Info("Deck deleted")
	return nil
}

// MatchDeck 返回用户牌组的对局视图，未设置的对战属性用 1-10 的
// 随机值补齐（与原始实现一致）。
func (s *DeckService) MatchDeck(ctx context.Context, userID uint) (string, []MatchCard, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if !user.HasDeck {
		return "", nil, ErrDeckNotFound
	}
	songs, err := s.userRepo.DeckSongs(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load deck songs for match")
		return "", nil, ErrInternalServer
	}

	cards := make([]MatchCard, 0, len(songs))
	for _, song := range songs {
		card := MatchCard{
			ID:      song.ID,
			Title:   song.Title,
			Artist:  song.Artist,
			Genre:   song.Genre,
			Year:    song.Year,
			Power:   song.Power,
			Defense: song.Defense,
			Rarity:  song.Rarity,
		}
		if card.Power == 0 {
			card.Power = rand.Intn(10) + 1
		}
		if card.Defense == 0 {
			card.Defense = rand.Intn(10) + 1
		}
		if card.Rarity == "" {
			card.Rarity = "common"
		}
		cards = append(cards, card)
	}
	return user.DeckName, cards, nil
}

func (s *DeckService) findUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternalServer
	}
	return user, nil
}
