package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code serves plain reads and transactional units of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles all repositories bound to one Querier.
type Repositories struct {
	Workdays WorkdayRepository
	Tickets  TicketRepository
	Staff    StaffRepository
	Outbox   OutboxRepository
	Audit    AuditRepository
}

// New builds the repository bundle over the given Querier.
func New(q Querier) Repositories {
	return Repositories{
		Workdays: NewWorkdayRepository(q),
		Tickets:  NewTicketRepository(q),
		Staff:    NewStaffRepository(q),
		Outbox:   NewOutboxRepository(q),
		Audit:    NewAuditRepository(q),
	}
}

// UnitOfWork runs a function over repositories bound to a single atomic
// transaction. The function's error rolls the whole unit back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, the signal the sequence generator retries on.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
