package worker

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/service"
)

// NearTurnWatcher alerts customers shortly before their turn. Each pass
// looks at the configured queue position in every category and queues an
// alert for whoever stands there; the outbox dedup guarantees one alert per
// ticket no matter how often the same ticket is observed at that position.
type NearTurnWatcher struct {
	repos         repository.Repositories
	notifications *service.NotificationService
	position      int
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewNearTurnWatcher creates the watcher. Position is the 1-based queue
// position that triggers the alert.
func NewNearTurnWatcher(repos repository.Repositories, notifications *service.NotificationService, position int, metrics *observability.Metrics, logger *zap.Logger) *NearTurnWatcher {
	if position < 1 {
		position = 1
	}
	return &NearTurnWatcher{
		repos:         repos,
		notifications: notifications,
		position:      position,
		metrics:       metrics,
		logger:        logger,
	}
}

// RunTick scans every queue once.
func (w *NearTurnWatcher) RunTick(ctx context.Context) error {
	w.metrics.RecordWorkerTick("near_turn")

	workday, err := w.repos.Workdays.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	for _, profile := range domain.AttentionProfiles() {
		ticket, err := w.repos.Tickets.PendingAtPosition(ctx, profile.Type, workday.ID, w.position)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			w.logger.Error("near-turn scan failed for category",
				zap.String("attention_type", string(profile.Type)),
				zap.Error(err))
			continue
		}

		queued, err := w.notifications.EnqueueNearTurn(ctx, w.repos.Outbox, ticket)
		if err != nil {
			w.logger.Error("near-turn enqueue failed",
				zap.String("ticket_number", ticket.Number),
				zap.Error(err))
			continue
		}
		if queued {
			w.logger.Info("near-turn alert queued",
				zap.String("ticket_number", ticket.Number),
				zap.Int("position", w.position))
		}
	}
	return nil
}
