package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/repository"
)

const debtorListCacheKey = "debtors:list"

// DebtorService serves the public canonical debtor table. The listing
// is cached in Redis for a short TTL; a nil client disables caching.
type DebtorService struct {
	debtors  repository.DebtorRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDebtorService constructs the service.
func NewDebtorService(debtors repository.DebtorRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *DebtorService {
	return &DebtorService{debtors: debtors, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// List returns all canonical debtors, cache first.
func (s *DebtorService) List(ctx context.Context, limit, offset int) ([]domain.Debtor, error) {
	// Only the unpaginated default listing is cached.
	cacheable := s.cache != nil && s.cacheTTL > 0 && limit <= 0 && offset <= 0

	if cacheable {
		if raw, err := s.cache.Get(ctx, debtorListCacheKey).Bytes(); err == nil {
			var cached []domain.Debtor
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("debtor list cache read failed", zap.Error(err))
		}
	}

	debtors, err := s.debtors.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if raw, err := json.Marshal(debtors); err == nil {
			if err := s.cache.Set(ctx, debtorListCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("debtor list cache write failed", zap.Error(err))
			}
		}
	}
	return debtors, nil
}

// Invalidate drops the cached listing. Called after workflow actions
// that change the canonical store.
func (s *DebtorService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, debtorListCacheKey).Err(); err != nil {
		s.logger.Warn("debtor list cache invalidation failed", zap.Error(err))
	}
}
