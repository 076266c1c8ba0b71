// Package mocks 提供 repository 接口的 testify mock 实现，供服务层测试使用。
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// UserRepository 是 repository.UserRepository 的 mock。
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) AddOwnedSongs(ctx context.Context, userID uint, songs []domain.Song) error {
	args := m.Called(ctx, userID, songs)
	return args.Error(0)
}

func (m *UserRepository) OwnedSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	args := m.Called(ctx, userID)
	var songs []domain.Song
	if args.Get(0) != nil {
		songs = args.Get(0).([]domain.Song)
	}
	return songs, args.Error(1)
}

func (m *UserRepository) OwnsSong(ctx context.Context, userID, songID uint) (bool, error) {
	args := m.Called(ctx, userID, songID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) ReplaceDeck(ctx context.Context, userID uint, name string, songs []domain.Song) error {
	args := m.Called(ctx, userID, name, songs)
	return args.Error(0)
}

func (m *UserRepository) DeckSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	args := m.Called(ctx, userID)
	var songs []domain.Song
	if args.Get(0) != nil {
		songs = args.Get(0).([]domain.Song)
	}
	return songs, args.Error(1)
}

func (m *UserRepository) ClearDeck(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
