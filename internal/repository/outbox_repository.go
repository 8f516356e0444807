package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// OutboxRepository handles persistence for notification messages.
type OutboxRepository interface {
	Create(ctx context.Context, message *domain.OutboxMessage) error
	ExistsForTicketTemplate(ctx context.Context, ticketID string, template domain.MessageTemplate) (bool, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time, attemptCount int) error
	Reschedule(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error
	MarkFailed(ctx context.Context, id string, attemptCount int) error
}

type outboxRepository struct {
	db Querier
}

// NewOutboxRepository instantiates the repository.
func NewOutboxRepository(db Querier) OutboxRepository {
	return &outboxRepository{db: db}
}

const outboxColumns = `id, ticket_id, template, status, scheduled_at, sent_at, attempt_count,
               destination, content, created_at`

func (r *outboxRepository) Create(ctx context.Context, message *domain.OutboxMessage) error {
	const query = `
        INSERT INTO outbox_messages (id, ticket_id, template, status, scheduled_at, attempt_count, destination, content)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		message.ID,
		message.TicketID,
		message.Template,
		message.Status,
		message.ScheduledAt,
		message.AttemptCount,
		message.Destination,
		message.Content,
	).Scan(&message.CreatedAt)
}

func (r *outboxRepository) ExistsForTicketTemplate(ctx context.Context, ticketID string, template domain.MessageTemplate) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM outbox_messages WHERE ticket_id=$1 AND template=$2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, ticketID, template).Scan(&exists)
	return exists, err
}

func (r *outboxRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT ` + outboxColumns + ` FROM outbox_messages
        WHERE status=$1 AND scheduled_at <= $2
        ORDER BY scheduled_at ASC LIMIT $3`
	rows, err := r.db.Query(ctx, query, domain.MessageStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OutboxMessage
	for rows.Next() {
		var message domain.OutboxMessage
		if err := rows.Scan(
			&message.ID,
			&message.TicketID,
			&message.Template,
			&message.Status,
			&message.ScheduledAt,
			&message.SentAt,
			&message.AttemptCount,
			&message.Destination,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, sentAt time.Time, attemptCount int) error {
	const query = `
        UPDATE outbox_messages SET status=$1, sent_at=$2, attempt_count=$3
        WHERE id=$4 AND status=$5`
	return r.guardedExec(ctx, query, domain.MessageStatusSent, sentAt, attemptCount, id, domain.MessageStatusPending)
}

func (r *outboxRepository) Reschedule(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error {
	const query = `
        UPDATE outbox_messages SET attempt_count=$1, scheduled_at=$2
        WHERE id=$3 AND status=$4`
	return r.guardedExec(ctx, query, attemptCount, nextAttemptAt, id, domain.MessageStatusPending)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, attemptCount int) error {
	const query = `
        UPDATE outbox_messages SET status=$1, attempt_count=$2
        WHERE id=$3 AND status=$4`
	return r.guardedExec(ctx, query, domain.MessageStatusFailed, attemptCount, id, domain.MessageStatusPending)
}

func (r *outboxRepository) guardedExec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
