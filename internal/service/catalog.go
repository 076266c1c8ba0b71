package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
	"github.com/vastavikadi/BeatBRAWL/internal/repository"
)

// initialClaimSize 是新用户一次性领取的歌曲数。
const initialClaimSize = 10

// CatalogService 负责歌曲目录和用户歌曲收藏的业务逻辑。
type CatalogService struct {
	songRepo repository.SongRepository
	userRepo repository.UserRepository
	cache    repository.CatalogCache
	cacheTTL time.Duration
}

// NewCatalogService 创建 CatalogService 实例。cache 可以为 nil（测试时）。
func NewCatalogService(songRepo repository.SongRepository, userRepo repository.UserRepository, cache repository.CatalogCache, cacheTTL time.Duration) *CatalogService {
	if songRepo == nil {
		panic("SongRepository cannot be nil for CatalogService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for CatalogService")
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CatalogService{
		songRepo: songRepo,
		userRepo: userRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ListSongs 返回完整目录，优先走缓存。缓存故障只降级为直读数据库。
func (s *CatalogService) ListSongs(ctx context.Context) ([]domain.Song, error) {
	if s.cache != nil {
		songs, err := s.cache.GetSongList(ctx)
		if err == nil {
			return songs, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			logrus.WithError(err).Warn("Catalog cache read failed, falling back to database")
		}
	}

	songs, err := s.songRepo.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load song catalog")
		return nil, ErrInternalServer
	}

	if s.cache != nil {
		if err := s.cache.SetSongList(ctx, songs, s.cacheTTL); err != nil {
			logrus.WithError(err).Warn("Failed to populate catalog cache")
		}
	}
	return songs, nil
}

// UserSongs 返回用户收藏的歌曲。用户不存在时返回 ErrUserNotFound。
func (s *CatalogService) UserSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	songs, err := s.userRepo.OwnedSongs(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load owned songs")
		return nil, ErrInternalServer
	}
	return songs, nil
}

// ClaimStatus 报告用户是否还能领取初始歌曲。
func (s *CatalogService) ClaimStatus(ctx context.Context, userID uint) (canClaim bool, err error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return !user.HasClaimedInitialSongs, nil
}

// ClaimInitialSongs 给新用户发放一批随机歌曲，每个用户只能领取一次。
func (s *CatalogService) ClaimInitialSongs(ctx context.Context, userID uint) ([]domain.Song, error) {
	logCtx := logrus.WithField("user_id", userID)

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasClaimedInitialSongs {
		logCtx.Warn("Initial songs claim rejected: already claimed")
		return nil, ErrAlreadyClaimed
	}

	songs, err := s.songRepo.RandomSample(ctx, initialClaimSize)
	if err != nil {
		logCtx.WithError(err).Error("Failed to sample initial songs")
		return nil, ErrInternalServer
	}

	if err := s.userRepo.AddOwnedSongs(ctx, userID, songs); err != nil {
		logCtx.WithError(err).Error("Failed to attach initial songs to user")
		return nil, ErrInternalServer
	}
	user.HasClaimedInitialSongs = true
	if err := s.userRepo.Save(ctx, user); err != nil {
		logCtx.WithError(err).Error("Failed to persist claim flag")
		return nil, ErrInternalServer
	}

	logCtx.WithField("songs", len(songs)).Info("Initial songs claimed")
	return songs, nil
}

// PurchaseSong 把一首歌加入用户收藏。支付确认发生在上游（区块链
// 转账回执由前端提交），这里只做归属登记和幂等校验。
func (s *CatalogService) PurchaseSong(ctx context.Context, userID, songID uint) (*domain.Song, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "song_id": songID})

	song, err := s.songRepo.FindByID(ctx, songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			return nil, ErrSongNotFound
		}
		logCtx.WithError(err).Error("Failed to look up song")
		return nil, ErrInternalServer
	}

	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	owned, err := s.userRepo.OwnsSong(ctx, userID, songID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check song ownership")
		return nil, ErrInternalServer
	}
	if owned {
		logCtx.Warn("Purchase rejected: song already owned")
		return nil, ErrSongAlreadyOwned
	}

	if err := s.userRepo.AddOwnedSongs(ctx, userID, []domain.Song{*song}); err != nil {
		logCtx.WithError(err).Error("Failed to attach purchased song")
		return nil, ErrInternalServer
	}

	logCtx.Info("Song purchased")
	return song, nil
}

func (s *CatalogService) findUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternalServer
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
