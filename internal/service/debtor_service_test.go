package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/repository"
)

// unreachableRedis returns a client pointed at a closed local port, so
// every cache access fails fast and shows up as a warning log.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestDebtorListCachePath(t *testing.T) {
	ctx := context.Background()
	debtors := repository.NewMemoryDebtorRepository()
	require.NoError(t, debtors.Create(ctx, &domain.Debtor{
		UserID: "u1", Name: "Ivan", Surname: "Petrov",
		AmountCents: 150050, City: "Riga", IndexKey: 1,
	}))

	core, logs := observer.New(zap.WarnLevel)
	svc := NewDebtorService(debtors, unreachableRedis(), time.Minute, zap.New(core))

	// The unpaginated default listing goes through the cache. With the
	// cache down it still answers from the repository and warns.
	got, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotZero(t, logs.FilterMessage("debtor list cache read failed").Len())
	require.NotZero(t, logs.FilterMessage("debtor list cache write failed").Len())

	// Explicit pagination bypasses the cache entirely.
	logs.TakeAll()
	got, err = svc.List(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Zero(t, logs.Len())
}

func TestDebtorListNilCache(t *testing.T) {
	ctx := context.Background()
	debtors := repository.NewMemoryDebtorRepository()
	svc := NewDebtorService(debtors, nil, time.Minute, zap.NewNop())

	got, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Empty(t, got)

	// Invalidate on a nil cache is a no-op.
	svc.Invalidate(ctx)
}
