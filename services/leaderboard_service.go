package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streakzillaAPI/internal/cache"
	"streakzillaAPI/internal/leaderboard"
	"streakzillaAPI/internal/logger"
)

type LeaderboardService struct {
	store MembershipStore
	cache cache.Cache
	ttl   time.Duration
}

func NewLeaderboardService(store MembershipStore, c cache.Cache, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{store: store, cache: c, ttl: ttl}
}

func leaderboardKey(challengeID uuid.UUID) string {
	return "leaderboard:" + challengeID.String()
}

// GetLeaderboard serves the ranked standings from cache when fresh. userID
// selects UserPosition and may be uuid.Nil for anonymous watchers.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, challengeID, userID uuid.UUID, now time.Time) (*leaderboard.Leaderboard, error) {
	key := leaderboardKey(challengeID)

	var cached leaderboard.Leaderboard
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		leaderboardCache.WithLabelValues("hit").Inc()
		return cached.WithUser(userID), nil
	case errors.Is(err, cache.ErrKeyNotFound):
		leaderboardCache.WithLabelValues("miss").Inc()
	default:
		leaderboardCache.WithLabelValues("error").Inc()
		logger.Log.Warn("leaderboard cache read failed", zap.String("key", key), zap.Error(err))
	}

	members, err := s.store.ListMembers(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	lb := leaderboard.Build(challengeID, members, uuid.Nil, now)
	if s.ttl > 0 {
		if err := s.cache.Set(ctx, key, lb, s.ttl); err != nil {
			logger.Log.Warn("leaderboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return lb.WithUser(userID), nil
}

// Invalidate drops the cached board after any change to points or streaks.
func (s *LeaderboardService) Invalidate(ctx context.Context, challengeID uuid.UUID) {
	if err := s.cache.Delete(ctx, leaderboardKey(challengeID)); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed",
			zap.Stringer("challenge_id", challengeID),
			zap.Error(err),
		)
	}
}
