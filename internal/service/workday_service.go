package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// WorkdaySummary is a closed or historical workday with its ticket totals.
type WorkdaySummary struct {
	Workday      *domain.Workday               `json:"workday"`
	TotalTickets int64                         `json:"total_tickets"`
	ByStatus     map[domain.TicketStatus]int64 `json:"by_status"`
}

// WorkdayService manages workday sessions. At most one workday is OPEN at a
// time; ticket numbering restarts with each new one.
type WorkdayService struct {
	uow    repository.UnitOfWork
	repos  repository.Repositories
	audit  *AuditService
	cfg    config.WorkdayConfig
	logger *zap.Logger
}

// NewWorkdayService creates the service.
func NewWorkdayService(uow repository.UnitOfWork, repos repository.Repositories, audit *AuditService, cfg config.WorkdayConfig, logger *zap.Logger) *WorkdayService {
	return &WorkdayService{uow: uow, repos: repos, audit: audit, cfg: cfg, logger: logger}
}

// Open starts a new workday. With strict opening enabled an existing OPEN
// workday is a conflict; otherwise it is closed and replaced in the same
// transaction, so there is never a moment with two open workdays.
func (s *WorkdayService) Open(ctx context.Context, actor string) (*domain.Workday, error) {
	var opened *domain.Workday
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		current, err := r.Workdays.GetOpen(ctx)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if current != nil {
			if s.cfg.StrictOpen {
				return apperrors.NewConflict("a workday is already open", map[string]any{"workday_id": current.ID})
			}
			if err := r.Workdays.Close(ctx, current.ID, time.Now().UTC()); err != nil {
				return err
			}
			s.logger.Info("closed stale workday before opening a new one",
				zap.String("workday_id", current.ID))
		}

		opened = &domain.Workday{
			ID:        uuid.NewString(),
			Status:    domain.WorkdayStatusOpen,
			StartTime: time.Now().UTC(),
		}
		return r.Workdays.Create(ctx, opened)
	})
	if repository.IsUniqueViolation(err) {
		// A concurrent open committed first; the single-OPEN index rejected
		// ours. Re-read the winner outside the aborted transaction.
		winner, readErr := s.repos.Workdays.GetOpen(ctx)
		if readErr == nil {
			if s.cfg.StrictOpen {
				return nil, apperrors.NewConflict("a workday is already open", map[string]any{"workday_id": winner.ID})
			}
			return winner, nil
		}
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(domain.AuditWorkdayOpened, actor, "workday", opened.ID, "")
	return opened, nil
}

// Close ends the currently open workday and returns its summary. Tickets
// still PENDING or ATTENDING keep their status; they simply stop being
// eligible for assignment because matching only looks at the open workday.
func (s *WorkdayService) Close(ctx context.Context, actor string) (*WorkdaySummary, error) {
	var summary *WorkdaySummary
	err := s.uow.Do(ctx, func(ctx context.Context, r repository.Repositories) error {
		current, err := r.Workdays.GetOpen(ctx)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewConflict("no open workday to close", nil)
			}
			return err
		}

		endTime := time.Now().UTC()
		if err := r.Workdays.Close(ctx, current.ID, endTime); err != nil {
			return err
		}
		current.Status = domain.WorkdayStatusClosed
		current.EndTime = &endTime

		summary, err = s.summarize(ctx, r, current)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(domain.AuditWorkdayClosed, actor, "workday", summary.Workday.ID,
		fmt.Sprintf("total_tickets=%d", summary.TotalTickets))
	return summary, nil
}

// Current returns the open workday. With lazy opening enabled a missing
// workday is opened on the spot; otherwise the absence is a not-found.
func (s *WorkdayService) Current(ctx context.Context) (*domain.Workday, error) {
	current, err := s.repos.Workdays.GetOpen(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if !s.cfg.LazyOpen {
		return nil, apperrors.NewNotFound("open workday", nil)
	}
	return s.Open(ctx, "system")
}

// EnsureOpen resolves the open workday inside an existing transaction,
// opening one lazily when policy allows. Ticket creation calls this so a
// ticket can never be created without a workday to number against.
func (s *WorkdayService) EnsureOpen(ctx context.Context, r repository.Repositories) (*domain.Workday, error) {
	current, err := r.Workdays.GetOpen(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if !s.cfg.LazyOpen {
		return nil, apperrors.NewConflict("no open workday", nil)
	}

	opened := &domain.Workday{
		ID:        uuid.NewString(),
		Status:    domain.WorkdayStatusOpen,
		StartTime: time.Now().UTC(),
	}
	if err := r.Workdays.Create(ctx, opened); err != nil {
		// A unique violation on the single-OPEN index means a concurrent
		// transaction opened the day first. The surrounding transaction is
		// already aborted, so surface it; ticket creation retries in a fresh
		// transaction and finds the winner.
		return nil, err
	}
	s.audit.Record(domain.AuditWorkdayOpened, "system", "workday", opened.ID, "lazy open")
	return opened, nil
}

// History lists recent workdays with their ticket totals, newest first.
func (s *WorkdayService) History(ctx context.Context, limit int) ([]*WorkdaySummary, error) {
	workdays, err := s.repos.Workdays.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summaries := make([]*WorkdaySummary, 0, len(workdays))
	for i := range workdays {
		summary, err := s.summarize(ctx, s.repos, &workdays[i])
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *WorkdayService) summarize(ctx context.Context, r repository.Repositories, wd *domain.Workday) (*WorkdaySummary, error) {
	total, err := r.Tickets.CountByWorkday(ctx, wd.ID)
	if err != nil {
		return nil, err
	}
	byStatus, err := r.Tickets.CountByStatusInWorkday(ctx, wd.ID)
	if err != nil {
		return nil, err
	}
	return &WorkdaySummary{Workday: wd, TotalTickets: total, ByStatus: byStatus}, nil
}
