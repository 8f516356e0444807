package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/repository"
)

type pgUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a UnitOfWork backed by pgx transactions. Every
// scheduler tick match, ticket creation and manual close runs through one of
// these so a numbering decision or a staff/ticket binding is never partially
// applied.
func NewUnitOfWork(pool *pgxpool.Pool) repository.UnitOfWork {
	return &pgUnitOfWork{pool: pool}
}

func (u *pgUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, repository.New(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
