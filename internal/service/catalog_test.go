package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository"
	"github.com/vastavikadi/BeatBRAWL/internal/repository/mocks"
	"github.com/vastavikadi/BeatBRAWL/internal/service"
)

func catalogFixture(n int) []domain.Song {
	songs := make([]domain.Song, n)
	for i := range songs {
		songs[i] = domain.Song{ID: uint(i + 1), Title: "Song", Artist: "Artist"}
	}
	return songs
}

// --- ListSongs ---

func TestCatalogService_ListSongs_CacheHit(t *testing.T) {
	// Arrange
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockCache := new(mocks.CatalogCache)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, mockCache, time.Minute)
	ctx := context.Background()
	cached := catalogFixture(3)

	mockCache.On("GetSongList", ctx).Return(cached, nil).Once()

	// Act
	songs, err := svc.ListSongs(ctx)

	// Assert: 命中缓存时不碰数据库
	require.NoError(t, err)
	assert.Equal(t, cached, songs)
	mockSongRepo.AssertNotCalled(t, "FindAll", mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestCatalogService_ListSongs_CacheMissFallsBack(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockCache := new(mocks.CatalogCache)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, mockCache, time.Minute)
	ctx := context.Background()
	fromDB := catalogFixture(2)

	mockCache.On("GetSongList", ctx).Return(nil, repository.ErrCacheMiss).Once()
	mockSongRepo.On("FindAll", ctx).Return(fromDB, nil).Once()
	// 未命中后回填缓存
	mockCache.On("SetSongList", ctx, fromDB, time.Minute).Return(nil).Once()

	songs, err := svc.ListSongs(ctx)

	require.NoError(t, err)
	assert.Equal(t, fromDB, songs)
	mockSongRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCatalogService_ListSongs_NilCache(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()
	fromDB := catalogFixture(1)

	mockSongRepo.On("FindAll", ctx).Return(fromDB, nil).Once()

	songs, err := svc.ListSongs(ctx)
	require.NoError(t, err)
	assert.Equal(t, fromDB, songs)
}

// --- ClaimInitialSongs ---

func TestCatalogService_ClaimInitialSongs_Success(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()
	user := &domain.User{ID: 7, Username: "fresh"}
	sample := catalogFixture(10)

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(user, nil).Once()
	mockSongRepo.On("RandomSample", ctx, 10).Return(sample, nil).Once()
	mockUserRepo.On("AddOwnedSongs", ctx, uint(7), sample).Return(nil).Once()
	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == 7 && u.HasClaimedInitialSongs
	})).Return(nil).Once()

	songs, err := svc.ClaimInitialSongs(ctx, 7)

	require.NoError(t, err)
	assert.Len(t, songs, 10)
	mockUserRepo.AssertExpectations(t)
	mockSongRepo.AssertExpectations(t)
}

func TestCatalogService_ClaimInitialSongs_AlreadyClaimed(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()
	user := &domain.User{ID: 7, HasClaimedInitialSongs: true}

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(user, nil).Once()

	_, err := svc.ClaimInitialSongs(ctx, 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyClaimed))
	mockSongRepo.AssertNotCalled(t, "RandomSample", mock.Anything, mock.Anything)
}

func TestCatalogService_ClaimInitialSongs_UserNotFound(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(99)).Return(nil, repository.ErrUserNotFound).Once()

	_, err := svc.ClaimInitialSongs(ctx, 99)
	assert.True(t, errors.Is(err, service.ErrUserNotFound))
}

// --- PurchaseSong ---

func TestCatalogService_PurchaseSong_Success(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()
	song := &domain.Song{ID: 3, Title: "New Track"}
	user := &domain.User{ID: 7}

	mockSongRepo.On("FindByID", ctx, uint(3)).Return(song, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(7)).Return(user, nil).Once()
	mockUserRepo.On("OwnsSong", ctx, uint(7), uint(3)).Return(false, nil).Once()
	mockUserRepo.On("AddOwnedSongs", ctx, uint(7), []domain.Song{*song}).Return(nil).Once()

	purchased, err := svc.PurchaseSong(ctx, 7, 3)

	require.NoError(t, err)
	assert.Equal(t, song, purchased)
	mockUserRepo.AssertExpectations(t)
	mockSongRepo.AssertExpectations(t)
}

func TestCatalogService_PurchaseSong_AlreadyOwned(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()

	mockSongRepo.On("FindByID", ctx, uint(3)).Return(&domain.Song{ID: 3}, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(7)).Return(&domain.User{ID: 7}, nil).Once()
	mockUserRepo.On("OwnsSong", ctx, uint(7), uint(3)).Return(true, nil).Once()

	_, err := svc.PurchaseSong(ctx, 7, 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrSongAlreadyOwned))
	mockUserRepo.AssertNotCalled(t, "AddOwnedSongs", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_PurchaseSong_SongNotFound(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()

	mockSongRepo.On("FindByID", ctx, uint(404)).Return(nil, repository.ErrSongNotFound).Once()

	_, err := svc.PurchaseSong(ctx, 7, 404)
	assert.True(t, errors.Is(err, service.ErrSongNotFound))
}

// --- UserSongs / ClaimStatus ---

func TestCatalogService_UserSongs(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()
	owned := catalogFixture(4)

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(&domain.User{ID: 7}, nil).Once()
	mockUserRepo.On("OwnedSongs", ctx, uint(7)).Return(owned, nil).Once()

	songs, err := svc.UserSongs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, owned, songs)
}

func TestCatalogService_ClaimStatus(t *testing.T) {
	mockSongRepo := new(mocks.SongRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := service.NewCatalogService(mockSongRepo, mockUserRepo, nil, time.Minute)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1}, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(2)).Return(&domain.User{ID: 2, HasClaimedInitialSongs: true}, nil).Once()

	canClaim, err := svc.ClaimStatus(ctx, 1)
	require.NoError(t, err)
	assert.True(t, canClaim)

	canClaim, err = svc.ClaimStatus(ctx, 2)
	require.NoError(t, err)
	assert.False(t, canClaim)
}
