package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// SongRepository 是 repository.SongRepository 的 mock。
type SongRepository struct {
	mock.Mock
}

func (m *SongRepository) FindByID(ctx context.Context, id uint) (*domain.Song, error) {
	args := m.Called(ctx, id)
	var song *domain.Song
	if args.Get(0) != nil {
		song = args.Get(0).(*domain.Song)
	}
	return song, args.Error(1)
}

func (m *SongRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Song, error) {
	args := m.Called(ctx, ids)
	var songs []domain.Song
	if args.Get(0) != nil {
		songs = args.Get(0).([]domain.Song)
	}
	return songs, args.Error(1)
}

func (m *SongRepository) FindAll(ctx context.Context) ([]domain.Song, error) {
	args := m.Called(ctx)
	var songs []domain.Song
	if args.Get(0) != nil {
		songs = args.Get(0).([]domain.Song)
	}
	return songs, args.Error(1)
}

func (m *SongRepository) RandomSample(ctx context.Context, n int) ([]domain.Song, error) {
	args := m.Called(ctx, n)
	var songs []domain.Song
	if args.Get(0) != nil {
		songs = args.Get(0).([]domain.Song)
	}
	return songs, args.Error(1)
}
