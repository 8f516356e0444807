package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
)

// NotificationService renders notification content and enqueues it on the
// persisted outbox. Content is rendered exactly once, here, so delivery
// retries resend byte-identical text. Methods take the outbox repository as
// an argument so enqueues join the caller's transaction.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// EnqueueTicketCreated queues the creation confirmation. Tickets without a
// contact channel are skipped silently; walk-in customers are common.
func (n *NotificationService) EnqueueTicketCreated(ctx context.Context, outbox repository.OutboxRepository, ticket *domain.Ticket, position int, waitMinutes int64) error {
	if !ticket.HasContact() {
		n.logger.Debug("ticket has no contact channel; skipping confirmation",
			zap.String("number", ticket.Number))
		return nil
	}
	content := domain.RenderTicketCreated(ticket.Number, position, waitMinutes)
	return n.enqueue(ctx, outbox, ticket, domain.TemplateTicketCreated, content)
}

// EnqueueNearTurn queues the pre-arrival alert at most once per ticket. The
// dedup marker is the persisted outbox row itself, backed by a partial unique
// index, so it survives restarts. Returns true when a new alert was queued.
func (n *NotificationService) EnqueueNearTurn(ctx context.Context, outbox repository.OutboxRepository, ticket *domain.Ticket) (bool, error) {
	if !ticket.HasContact() {
		return false, nil
	}
	exists, err := outbox.ExistsForTicketTemplate(ctx, ticket.ID, domain.TemplateNearTurn)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	content := domain.RenderNearTurn(ticket.Number)
	if err := n.enqueue(ctx, outbox, ticket, domain.TemplateNearTurn, content); err != nil {
		// A concurrent watcher tick may have inserted first; the index makes
		// that a benign race.
		if repository.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnqueueTurnActive queues the turn-active alert with the desk to approach.
func (n *NotificationService) EnqueueTurnActive(ctx context.Context, outbox repository.OutboxRepository, ticket *domain.Ticket, staff *domain.Staff) error {
	if !ticket.HasContact() {
		return nil
	}
	if staff == nil {
		return errors.New("turn-active alert requires an assigned staff member")
	}
	content := domain.RenderTurnActive(ticket.Number, staff.Module, staff.FullName)
	return n.enqueue(ctx, outbox, ticket, domain.TemplateTurnActive, content)
}

func (n *NotificationService) enqueue(ctx context.Context, outbox repository.OutboxRepository, ticket *domain.Ticket, template domain.MessageTemplate, content string) error {
	message := &domain.OutboxMessage{
		ID:          uuid.NewString(),
		TicketID:    ticket.ID,
		Template:    template,
		Status:      domain.MessageStatusPending,
		ScheduledAt: time.Now().UTC(),
		Destination: *ticket.TelegramChatID,
		Content:     content,
	}
	return outbox.Create(ctx, message)
}
