package worker

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/notify"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/service"
)

// DeliveryWorker drains the outbox. Each due message gets one send attempt
// per pass; a failure reschedules it with a doubling backoff until the
// attempt budget is spent, then the message is parked as FAILED for
// operator review.
type DeliveryWorker struct {
	outbox      repository.OutboxRepository
	transport   notify.Transport
	audit       *service.AuditService
	metrics     *observability.Metrics
	maxAttempts int
	backoff     time.Duration
	batchSize   int
	logger      *zap.Logger

	now func() time.Time
}

// NewDeliveryWorker creates the worker.
func NewDeliveryWorker(
	outbox repository.OutboxRepository,
	transport notify.Transport,
	audit *service.AuditService,
	metrics *observability.Metrics,
	maxAttempts int,
	backoff time.Duration,
	batchSize int,
	logger *zap.Logger,
) *DeliveryWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff <= 0 {
		backoff = 30 * time.Second
	}
	return &DeliveryWorker{
		outbox:      outbox,
		transport:   transport,
		audit:       audit,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		batchSize:   batchSize,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RunTick processes one batch of due messages.
func (w *DeliveryWorker) RunTick(ctx context.Context) error {
	w.metrics.RecordWorkerTick("delivery")

	due, err := w.outbox.ListDue(ctx, w.now(), w.batchSize)
	if err != nil {
		return err
	}

	for i := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.deliver(ctx, &due[i])
	}
	return nil
}

func (w *DeliveryWorker) deliver(ctx context.Context, message *domain.OutboxMessage) {
	attempt := message.AttemptCount + 1

	if err := w.transport.Send(ctx, message.Destination, message.Content); err != nil {
		w.handleFailure(ctx, message, attempt, err)
		return
	}

	sentAt := w.now()
	if err := w.outbox.MarkSent(ctx, message.ID, sentAt, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Another instance already resolved the message.
			return
		}
		w.logger.Error("failed to mark message sent",
			zap.String("message_id", message.ID),
			zap.Error(err))
		return
	}

	w.metrics.RecordDelivery("sent")
	w.audit.Record(domain.AuditMessageSent, "delivery", "message", message.ID, string(message.Template))
	w.logger.Info("message delivered",
		zap.String("message_id", message.ID),
		zap.String("template", string(message.Template)),
		zap.Int("attempt", attempt))
}

func (w *DeliveryWorker) handleFailure(ctx context.Context, message *domain.OutboxMessage, attempt int, sendErr error) {
	if attempt >= w.maxAttempts {
		if err := w.outbox.MarkFailed(ctx, message.ID, attempt); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			w.logger.Error("failed to mark message failed",
				zap.String("message_id", message.ID),
				zap.Error(err))
			return
		}
		w.metrics.RecordDelivery("failed")
		w.audit.Record(domain.AuditMessageFailed, "delivery", "message", message.ID, sendErr.Error())
		w.logger.Warn("message exhausted its attempts",
			zap.String("message_id", message.ID),
			zap.String("template", string(message.Template)),
			zap.Int("attempts", attempt),
			zap.Error(sendErr))
		return
	}

	// 30s, 60s, 120s for the default budget of four attempts.
	delay := w.backoff << (attempt - 1)
	nextAttempt := w.now().Add(delay)
	if err := w.outbox.Reschedule(ctx, message.ID, attempt, nextAttempt); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		w.logger.Error("failed to reschedule message",
			zap.String("message_id", message.ID),
			zap.Error(err))
		return
	}

	w.metrics.RecordDelivery("retried")
	w.logger.Warn("message delivery failed, rescheduled",
		zap.String("message_id", message.ID),
		zap.Int("attempt", attempt),
		zap.Duration("retry_in", delay),
		zap.Error(sendErr))
}
