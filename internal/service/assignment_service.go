package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/realtime"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// AssignmentService matches waiting tickets to available staff. Categories
// are visited in descending priority and each gets at most one match per
// tick, which keeps any single busy queue from starving the others within a
// tick while priority still decides who goes first.
type AssignmentService struct {
	uow           repository.UnitOfWork
	notifications *NotificationService
	audit         *AuditService
	announcer     *realtime.Announcer
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(uow repository.UnitOfWork, notifications *NotificationService, audit *AuditService, announcer *realtime.Announcer, metrics *observability.Metrics, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		uow:           uow,
		notifications: notifications,
		audit:         audit,
		announcer:     announcer,
		metrics:       metrics,
		logger:        logger,
	}
}

type assignmentMatch struct {
	ticket *domain.Ticket
	staff  *domain.Staff
}

// RunTick performs one matching pass. A failure in one category is logged
// and the pass moves on; the next tick retries from current state.
func (s *AssignmentService) RunTick(ctx context.Context) error {
	s.metrics.RecordWorkerTick("assignment")
	for _, profile := range domain.AttentionProfiles() {
		match, err := s.assignOne(ctx, profile.Type)
		if err != nil {
			s.logger.Error("assignment pass failed for category",
				zap.String("attention_type", string(profile.Type)),
				zap.Error(err))
			continue
		}
		if match == nil {
			continue
		}

		s.logger.Info("ticket assigned",
			zap.String("ticket_number", match.ticket.Number),
			zap.String("staff_id", match.staff.ID),
			zap.String("module", match.staff.Module))
		s.audit.Record(domain.AuditTicketAssigned, "scheduler", "ticket", match.ticket.ID,
			match.ticket.Number+" -> "+match.staff.Module)
		s.announce(ctx, match)
	}
	return nil
}

// assignOne pairs the oldest waiting ticket of the category with the staff
// member idle the longest. The pairing, the status flips and the turn-active
// alert commit atomically; the guarded updates abort the transaction if
// either side was grabbed concurrently.
func (s *AssignmentService) assignOne(ctx context.Context, attentionType domain.AttentionType) (*assignmentMatch, error) {
	var match *assignmentMatch
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		workday, err := r.Workdays.GetOpen(ctx)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		staff, err := r.Staff.FindAvailableForType(ctx, attentionType)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		ticket, err := r.Tickets.OldestPending(ctx, attentionType, workday.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		now := time.Now().UTC()
		if err := r.Staff.SetBusy(ctx, staff.ID, now); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewInvariantViolation("selected staff member is no longer available", nil)
			}
			return err
		}
		if err := r.Tickets.MarkAttending(ctx, ticket.ID, staff.ID, now); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewInvariantViolation("selected ticket is no longer pending", nil)
			}
			return err
		}

		staff.Status = domain.StaffStatusBusy
		staff.LastStatusChange = now
		ticket.Status = domain.TicketStatusAttending
		ticket.StaffID = &staff.ID
		ticket.AttendedAt = &now

		if err := s.notifications.EnqueueTurnActive(ctx, r.Outbox, ticket, staff); err != nil {
			return err
		}

		match = &assignmentMatch{ticket: ticket, staff: staff}
		return nil
	})
	return match, err
}

func (s *AssignmentService) announce(ctx context.Context, match *assignmentMatch) {
	if s.announcer == nil {
		return
	}
	s.announcer.PublishNowServing(ctx, realtime.BoardEntry{
		Number:     match.ticket.Number,
		Module:     match.staff.Module,
		StaffName:  match.staff.FullName,
		AttendedAt: *match.ticket.AttendedAt,
	})
}
