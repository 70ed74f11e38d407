package repository

import (
	"context"
	"errors"
	"time"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/domain/repository"
	"QuantBench/pkg/cache"
)

// CachedRunStore keeps completed backtest results in the cache layer so a
// repeat of an identical request skips the whole pipeline.
type CachedRunStore struct {
	cache cache.Service
	ttl   time.Duration
}

func NewCachedRunStore(c cache.Service, ttl time.Duration) repository.RunCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedRunStore{cache: c, ttl: ttl}
}

func (s *CachedRunStore) Get(ctx context.Context, key string) (*models.BacktestResult, bool) {
	var result models.BacktestResult
	if err := s.cache.Get(ctx, key, &result); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			return nil, false
		}
		return nil, false
	}
	return &result, true
}

func (s *CachedRunStore) Set(ctx context.Context, key string, result *models.BacktestResult) error {
	return s.cache.Set(ctx, key, result, s.ttl)
}
