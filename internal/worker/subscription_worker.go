package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/service"
)

// StartSubscriptionWorker runs the expiry sweep on a fixed cadence
// until ctx is cancelled. One sweep runs immediately at startup.
func StartSubscriptionWorker(ctx context.Context, subscriptions *service.SubscriptionService, interval time.Duration, logger *zap.Logger) {
	if subscriptions == nil {
		return
	}
	go func() {
		logger.Info("subscription worker started", zap.Duration("interval", interval))
		_ = subscriptions.Sweep(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("subscription worker stopped")
				return
			case <-ticker.C:
				_ = subscriptions.Sweep(ctx)
			}
		}
	}()
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notifications *service.NotificationService) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
}
