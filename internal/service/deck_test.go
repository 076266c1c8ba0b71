package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository/mocks"
	"github.com/vastavikadi/BeatBRAWL/internal/service"
)

func TestDeckService_GetDeck_NoDeck(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewDeckService(mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(&domain.User{ID: 7, HasDeck: false}, nil).Once()

	_, err := svc.GetDeck(ctx, 7)
	assert.True(t, errors.Is(err, service.ErrDeckNotFound))
	mockUserRepo.AssertNotCalled(t, "DeckSongs", mock.Anything, mock.Anything)
}

func TestDeckService_GetDeck_Success(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewDeckService(mockUserRepo)
	ctx := context.Background()
	songs := []domain.Song{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}}

	mockUserRepo.On("FindByID", ctx, uint(7)).
		Return(&domain.User{ID: 7, HasDeck: true, DeckName: "Battle Deck"}, nil).Once()
	mockUserRepo.On("DeckSongs", ctx, uint(7)).Return(songs, nil).Once()

	deck, err := svc.GetDeck(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Battle Deck", deck.Name)
	assert.Equal(t, songs, deck.Songs)
}

func TestDeckService_SaveDeck_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewDeckService(mockUserRepo)
	ctx := context.Background()
	owned := []domain.Song{{ID: 1}, {ID: 2}, {ID: 3}}

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(&domain.User{ID: 7}, nil).Once()
	mockUserRepo.On("OwnedSongs", ctx, uint(7)).Return(owned, nil).Once()
	mockUserRepo.On("ReplaceDeck", ctx, uint(7), "My Deck", []domain.Song{{ID: 3}, {ID: 1}}).
		Return(nil).Once()

	// Act: 牌组保持请求里的顺序
	deck, err := svc.SaveDeck(ctx, 7, "My Deck", []uint{3, 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "My Deck", deck.Name)
	require.Len(t, deck.Songs, 2)
	assert.Equal(t, uint(3), deck.Songs[0].ID)
	mockUserRepo.AssertExpectations(t)
}

func TestDeckService_SaveDeck_RejectsUnownedSong(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewDeckService(mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(&domain.User{ID: 7}, nil).Once()
	mockUserRepo.On("OwnedSongs", ctx, uint(7)).Return([]domain.Song{{ID: 1}}, nil).Once()

	_, err := svc.SaveDeck(ctx, 7, "My Deck", []uint{1, 999})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrSongNotOwned))
	mockUserRepo.AssertNotCalled(t, "ReplaceDeck", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeckService_DeleteDeck_NoDeck(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewDeckService(mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(&domain.User{ID: 7, HasDeck: false}, nil).Once()

	err := svc.DeleteDeck(ctx, 7)
	assert.True(t, errors.Is(err, service.ErrDeckNotFound))
	mockUserRepo.AssertNotCalled(t, "ClearDeck", mock.Anything, mock.Anything)
}

func TestDeckService_MatchDeck_FillsDefaults(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewDeckService(mockUserRepo)
	ctx := context.Background()
	songs := []domain.Song{
		{ID: 1, Title: "Plain"},                                            // 没有对战属性
		{ID: 2, Title: "Tuned", Power: 8, Defense: 6, Rarity: "legendary"}, // 已有属性
	}

	mockUserRepo.On("FindByID", ctx, uint(7)).
		Return(&domain.User{ID: 7, HasDeck: true, DeckName: "Battle Deck"}, nil).Once()
	mockUserRepo.On("DeckSongs", ctx, uint(7)).Return(songs, nil).Once()

	name, cards, err := svc.MatchDeck(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, "Battle Deck", name)
	require.Len(t, cards, 2)

	// 缺省属性被 1-10 的随机值补齐
	assert.GreaterOrEqual(t, cards[0].Power, 1)
	assert.LessOrEqual(t, cards[0].Power, 10)
	assert.GreaterOrEqual(t, cards[0].Defense, 1)
	assert.LessOrEqual(t, cards[0].Defense, 10)
	assert.Equal(t, "common", cards[0].Rarity)

	// 已设置的属性原样保留
	assert.Equal(t, 8, cards[1].Power)
	assert.Equal(t, 6, cards[1].Defense)
	assert.Equal(t, "legendary", cards[1].Rarity)
}
