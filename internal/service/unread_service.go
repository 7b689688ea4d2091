package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/homehub/homehub-api/pkg/errors"
)

type unreadCounter interface {
	CountUnread(ctx context.Context, userID int64) (int, error)
}

// UnreadService derives per-user unread counts. The badge endpoint polls it
// on a timer, so counts are cached in Redis under a generation-scoped key
// with a short TTL; cache failures fall through to the store and never fail
// the read. A nil Redis client disables caching entirely.
type UnreadService struct {
	repo    unreadCounter
	cache   *redis.Client
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

const unreadGenKey = "unread:gen"

// NewUnreadService instantiates UnreadService.
func NewUnreadService(repo unreadCounter, cache *redis.Client, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *UnreadService {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnreadService{repo: repo, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// CountUnread returns the number of active messages the user has not
// acknowledged. Side-effect free apart from cache fills.
func (s *UnreadService) CountUnread(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}

	key := s.countKey(ctx, userID)
	if key != "" {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			if count, convErr := strconv.Atoi(raw); convErr == nil {
				if s.metrics != nil {
					s.metrics.CacheHit()
				}
				return count, nil
			}
		} else if err != redis.Nil {
			s.logger.Debug("unread cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.CacheMiss()
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, strconv.Itoa(count), s.ttl).Err(); err != nil {
			s.logger.Debug("unread cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

// Invalidate drops the cached count for one user, typically after that user
// acknowledges a message.
func (s *UnreadService) Invalidate(ctx context.Context, userID int64) {
	key := s.countKey(ctx, userID)
	if key == "" {
		return
	}
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Debug("unread cache invalidate failed", zap.Error(err))
	}
}

// Flush invalidates every user's cached count by bumping the generation key.
// Old-generation entries age out by TTL.
func (s *UnreadService) Flush(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, unreadGenKey).Err(); err != nil {
		s.logger.Debug("unread cache flush failed", zap.Error(err))
	}
}

// countKey resolves the generation-scoped cache key for a user, or "" when
// caching is unavailable.
func (s *UnreadService) countKey(ctx context.Context, userID int64) string {
	if s.cache == nil {
		return ""
	}
	gen, err := s.cache.Get(ctx, unreadGenKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("unread generation read failed", zap.Error(err))
			return ""
		}
		gen = "0"
	}
	return fmt.Sprintf("unread:%s:%d", gen, userID)
}
