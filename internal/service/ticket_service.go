package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// CreateTicketInput carries the data needed to issue a ticket.
type CreateTicketInput struct {
	AttentionType  string
	CustomerID     *string
	TelegramChatID *string
}

// CreateTicketResult is the issued ticket with its queue snapshot.
type CreateTicketResult struct {
	Ticket               *domain.Ticket `json:"ticket"`
	Position             int            `json:"position"`
	EstimatedWaitMinutes int64          `json:"estimated_wait_minutes"`
}

// TicketStatusResult is the customer-facing view of a ticket's progress.
type TicketStatusResult struct {
	Ticket               *domain.Ticket `json:"ticket"`
	Position             int            `json:"position"`
	EstimatedWaitMinutes int64          `json:"estimated_wait_minutes"`
	StaffName            string         `json:"staff_name,omitempty"`
	Module               string         `json:"module,omitempty"`
}

// TicketService issues tickets with per-queue sequential numbers and drives
// their lifecycle. Numbering is optimistic: read the count, insert count+1,
// and retry on the unique constraint when two requests collide.
type TicketService struct {
	uow           repository.UnitOfWork
	repos         repository.Repositories
	workdays      *WorkdayService
	queue         *QueueService
	notifications *NotificationService
	audit         *AuditService
	cfg           config.SchedulerConfig
	logger        *zap.Logger

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTicketService creates the service.
func NewTicketService(
	uow repository.UnitOfWork,
	repos repository.Repositories,
	workdays *WorkdayService,
	queue *QueueService,
	notifications *NotificationService,
	audit *AuditService,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		uow:           uow,
		repos:         repos,
		workdays:      workdays,
		queue:         queue,
		notifications: notifications,
		audit:         audit,
		cfg:           cfg,
		logger:        logger,
		sleep:         sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Create issues a new ticket. The number, the queue position and the
// confirmation message are all produced in one transaction, so a ticket
// either fully exists with its outbox entry or not at all.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*CreateTicketResult, error) {
	attentionType, err := domain.ParseAttentionType(input.AttentionType)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown attention type", map[string]any{"attention_type": input.AttentionType})
	}
	profile, _ := domain.ProfileFor(attentionType)

	maxAttempts := s.cfg.NumberingMaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var result *CreateTicketResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
			workday, err := s.workdays.EnsureOpen(ctx, r)
			if err != nil {
				return err
			}

			issued, err := r.Tickets.CountByTypeAndWorkday(ctx, attentionType, workday.ID)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			ticket := &domain.Ticket{
				ID:             uuid.NewString(),
				ReferenceCode:  uuid.NewString(),
				Number:         fmt.Sprintf("%s-%d", profile.Prefix, issued+1),
				AttentionType:  attentionType,
				Status:         domain.TicketStatusPending,
				WorkdayID:      workday.ID,
				CustomerID:     input.CustomerID,
				TelegramChatID: input.TelegramChatID,
				CreatedAt:      now,
			}
			if err := r.Tickets.Create(ctx, ticket); err != nil {
				return err
			}

			position, err := s.queue.Rank(ctx, r.Tickets, ticket)
			if err != nil {
				return err
			}
			waitMinutes := s.queue.EstimateWait(attentionType, position)

			if err := s.notifications.EnqueueTicketCreated(ctx, r.Outbox, ticket, position, waitMinutes); err != nil {
				return err
			}

			result = &CreateTicketResult{Ticket: ticket, Position: position, EstimatedWaitMinutes: waitMinutes}
			return nil
		})
		if err == nil {
			s.audit.Record(domain.AuditTicketCreated, "public", "ticket", result.Ticket.ID, result.Ticket.Number)
			return result, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, apperrors.MapError(err)
		}

		s.logger.Debug("ticket number collision, retrying",
			zap.String("attention_type", string(attentionType)),
			zap.Int("attempt", attempt))
		if attempt < maxAttempts {
			backoff := time.Duration(50+rand.Intn(50)) * time.Millisecond
			if err := s.sleep(ctx, backoff); err != nil {
				return nil, apperrors.MapError(err)
			}
		}
	}

	return nil, apperrors.NewConflict("could not allocate a ticket number, please retry",
		map[string]any{"attention_type": string(attentionType)})
}

// Status looks up a ticket by its reference code and reports progress. For a
// waiting ticket that is its live position and wait estimate; for a ticket
// being attended, the desk and staff member serving it.
func (s *TicketService) Status(ctx context.Context, referenceCode string) (*TicketStatusResult, error) {
	ticket, err := s.repos.Tickets.GetByReferenceCode(ctx, referenceCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	result := &TicketStatusResult{Ticket: ticket}
	switch ticket.Status {
	case domain.TicketStatusPending:
		position, err := s.queue.Rank(ctx, s.repos.Tickets, ticket)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result.Position = position
		result.EstimatedWaitMinutes = s.queue.EstimateWait(ticket.AttentionType, position)
	case domain.TicketStatusAttending:
		if ticket.StaffID != nil {
			staff, err := s.repos.Staff.GetByID(ctx, *ticket.StaffID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			if staff != nil {
				result.StaffName = staff.FullName
				result.Module = staff.Module
			}
		}
	}
	return result, nil
}

// Cancel withdraws a waiting ticket. Only PENDING tickets can be cancelled;
// anything else is a conflict.
func (s *TicketService) Cancel(ctx context.Context, referenceCode, actor string) (*domain.Ticket, error) {
	var cancelled *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		ticket, err := r.Tickets.GetByReferenceCode(ctx, referenceCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", nil)
			}
			return err
		}
		if ticket.Status != domain.TicketStatusPending {
			return apperrors.NewConflict("only waiting tickets can be cancelled",
				map[string]any{"status": string(ticket.Status)})
		}
		if err := r.Tickets.MarkCancelled(ctx, ticket.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Assigned between our read and the guarded update.
				return apperrors.NewConflict("ticket is no longer waiting", nil)
			}
			return err
		}
		ticket.Status = domain.TicketStatusCancelled
		cancelled = ticket
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(domain.AuditTicketCancelled, actor, "ticket", cancelled.ID, cancelled.Number)
	return cancelled, nil
}

// FinishCurrent closes the ticket the staff member is attending and frees
// them for the next assignment. Finishing with nothing in progress is a
// no-op so the desk button is idempotent.
func (s *TicketService) FinishCurrent(ctx context.Context, staffID string) (*domain.Ticket, error) {
	return s.resolveCurrent(ctx, staffID, domain.TicketStatusClosed)
}

// NoShowCurrent marks the attended ticket NO_SHOW when the customer never
// arrived and frees the staff member, mirroring FinishCurrent.
func (s *TicketService) NoShowCurrent(ctx context.Context, staffID string) (*domain.Ticket, error) {
	return s.resolveCurrent(ctx, staffID, domain.TicketStatusNoShow)
}

func (s *TicketService) resolveCurrent(ctx context.Context, staffID string, outcome domain.TicketStatus) (*domain.Ticket, error) {
	var resolved *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		staff, err := r.Staff.GetByID(ctx, staffID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("staff member", nil)
			}
			return err
		}

		ticket, err := r.Tickets.FindAttendingByStaff(ctx, staff.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		now := time.Now().UTC()
		if outcome == domain.TicketStatusNoShow {
			err = r.Tickets.MarkNoShow(ctx, ticket.ID, now)
		} else {
			err = r.Tickets.MarkClosed(ctx, ticket.ID, now)
		}
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewInvariantViolation("attending ticket changed state unexpectedly", nil)
			}
			return err
		}
		if err := r.Staff.SetStatus(ctx, staff.ID, domain.StaffStatusAvailable, now); err != nil {
			return err
		}
		ticket.Status = outcome
		ticket.ClosedAt = &now
		resolved = ticket
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if resolved != nil {
		event := domain.AuditTicketClosed
		if outcome == domain.TicketStatusNoShow {
			event = domain.AuditTicketNoShow
		}
		s.audit.Record(event, staffID, "ticket", resolved.ID, resolved.Number)
	}
	return resolved, nil
}
