package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// DashboardMetrics is the operational snapshot of the open workday.
type DashboardMetrics struct {
	Workday      *domain.Workday               `json:"workday"`
	TotalTickets int64                         `json:"total_tickets"`
	ByStatus     map[domain.TicketStatus]int64 `json:"by_status"`
	Queues       []QueueStatus                 `json:"queues"`
	Staff        []StaffOverview               `json:"staff"`
}

// DashboardService aggregates read-only views for supervisors and for the
// public now-serving board.
type DashboardService struct {
	repos repository.Repositories
	queue *QueueService
	staff *StaffService
}

// NewDashboardService creates the service.
func NewDashboardService(repos repository.Repositories, queue *QueueService, staff *StaffService) *DashboardService {
	return &DashboardService{repos: repos, queue: queue, staff: staff}
}

// Metrics returns the open workday's totals, per-queue state and staff
// roster. Outside working hours it returns empty metrics with no workday.
func (s *DashboardService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	metrics := &DashboardMetrics{
		ByStatus: map[domain.TicketStatus]int64{},
		Queues:   []QueueStatus{},
		Staff:    []StaffOverview{},
	}

	workday, err := s.repos.Workdays.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return metrics, nil
		}
		return nil, apperrors.MapError(err)
	}
	metrics.Workday = workday

	metrics.TotalTickets, err = s.repos.Tickets.CountByWorkday(ctx, workday.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	metrics.ByStatus, err = s.repos.Tickets.CountByStatusInWorkday(ctx, workday.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	metrics.Queues, err = s.queue.Statuses(ctx, workday.ID)
	if err != nil {
		return nil, err
	}
	metrics.Staff, err = s.staff.List(ctx)
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

// NowServing lists the tickets currently at a desk for the lobby board.
func (s *DashboardService) NowServing(ctx context.Context) ([]repository.NowServingEntry, error) {
	workday, err := s.repos.Workdays.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []repository.NowServingEntry{}, nil
		}
		return nil, apperrors.MapError(err)
	}

	entries, err := s.repos.Tickets.ListNowServing(ctx, workday.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
