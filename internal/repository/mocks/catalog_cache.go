package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// CatalogCache 是 repository.CatalogCache 的 mock。
type CatalogCache struct {
	mock.Mock
}

func (m *CatalogCache) GetSongList(ctx context.Context) ([]domain.Song, error) {
	args := m.Called(ctx)
	var songs []domain.Song
	if args.Get(0) != nil {
		songs = args.Get(0).([]domain.Song)
	}
	return songs, args.Error(1)
}

func (m *CatalogCache) SetSongList(ctx context.Context, songs []domain.Song, ttl time.Duration) error {
	args := m.Called(ctx, songs, ttl)
	return args.Error(0)
}

func (m *CatalogCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
