package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/repository"
)

// SubscriptionService clears expired subscription flags.
type SubscriptionService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(users repository.UserRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{users: users, logger: logger}
}

// Sweep flips subscription off for every user whose end date passed.
func (s *SubscriptionService) Sweep(ctx context.Context) error {
	changed, err := s.users.ExpireSubscriptions(ctx, time.Now())
	if err != nil {
		s.logger.Error("subscription sweep failed", zap.Error(err))
		return err
	}
	if changed > 0 {
		s.logger.Info("expired subscriptions cleared", zap.Int64("count", changed))
	}
	return nil
}
