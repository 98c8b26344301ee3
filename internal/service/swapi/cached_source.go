package swapi

import (
	"context"
	"strconv"
	"time"

	"github.com/kapu/cantina-go/internal/constants"
	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/people"
	"go.uber.org/zap"
)

// PageCache is the subset of cache.CacheService used for page caching.
type PageCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedSource serves pages from a cache and falls back to the wrapped
// source on a miss. Cache failures only cost a network round trip.
type CachedSource struct {
	source people.PeopleSource
	cache  PageCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(source people.PeopleSource, cache PageCache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = constants.CacheTTL.PeoplePage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// PageCacheKey is the cache key for one people page.
func PageCacheKey(page int) string {
	return constants.CacheKeys.PeoplePagePrefix + strconv.Itoa(page)
}

// Fetch implements people.PeopleSource.
func (s *CachedSource) Fetch(ctx context.Context, page int) (*domain.PageResult, error) {
	key := PageCacheKey(page)

	var cached domain.PageResult
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("People page cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		s.logger.Debug("People page cache hit", zap.Int("page", page))
		return &cached, nil
	}

	result, err := s.source.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
		s.logger.Warn("People page cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}
