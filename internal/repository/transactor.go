package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a Postgres-backed Transactor.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &pgxTransactor{pool: pool}
}

func (t *pgxTransactor) InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stores := Stores{
		Users:    NewUserRepository(tx),
		Requests: NewRequestRepository(tx),
		Debtors:  NewDebtorRepository(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
