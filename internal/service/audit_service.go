package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
)

// AuditService records operational events. Recording is fire-and-forget: it
// never blocks or fails the triggering operation.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record persists an audit entry asynchronously, detached from the caller's
// context so a finished request does not cancel the write.
func (s *AuditService) Record(event domain.AuditEvent, actor, entityType, entityID, details string) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		OccurredAt: time.Now().UTC(),
		Event:      event,
		Actor:      actor,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Record(ctx, entry); err != nil {
			s.logger.Warn("audit record failed",
				zap.String("event", string(event)),
				zap.String("entity_id", entityID),
				zap.Error(err))
		}
	}()
}
