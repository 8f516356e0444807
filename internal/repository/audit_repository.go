package repository

import (
	"context"

	"github.com/spec-kit/queue-service/internal/domain"
)

// AuditRepository persists the operational audit trail.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type auditRepository struct {
	db Querier
}

// NewAuditRepository instantiates the repository.
func NewAuditRepository(db Querier) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (occurred_at, event, actor, entity_type, entity_id, details)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.OccurredAt,
		entry.Event,
		entry.Actor,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
	).Scan(&entry.ID)
}
