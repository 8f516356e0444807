package service

import (
	"context"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// QueueStatus is the public snapshot of a single attention queue.
type QueueStatus struct {
	AttentionType        domain.AttentionType `json:"attention_type"`
	Prefix               string               `json:"prefix"`
	Waiting              int64                `json:"waiting"`
	EstimatedWaitMinutes int64                `json:"estimated_wait_minutes"`
}

// QueueService answers position and wait-estimation questions. Positions are
// computed on demand from creation order, never stored, so cancellations
// ahead of a ticket shrink its position automatically.
type QueueService struct {
	repos repository.Repositories
}

// NewQueueService creates the service.
func NewQueueService(repos repository.Repositories) *QueueService {
	return &QueueService{repos: repos}
}

// Rank returns the 1-based position of a PENDING ticket within its queue.
// Non-pending tickets have no position and report zero.
func (s *QueueService) Rank(ctx context.Context, tickets repository.TicketRepository, ticket *domain.Ticket) (int, error) {
	if ticket.Status != domain.TicketStatusPending {
		return 0, nil
	}
	ahead, err := tickets.CountPendingBefore(ctx, ticket.AttentionType, ticket.WorkdayID, ticket.CreatedAt)
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// EstimateWait is the position multiplied by the category's average service
// time. Position zero (already being served, or done) estimates zero.
func (s *QueueService) EstimateWait(attentionType domain.AttentionType, position int) int64 {
	if position <= 0 {
		return 0
	}
	profile, ok := domain.ProfileFor(attentionType)
	if !ok {
		return 0
	}
	return int64(position) * int64(profile.AverageServiceMinutes)
}

// Statuses reports every queue of the given workday: how many tickets wait
// and how long the last of them expects to wait. An empty queue estimates
// zero.
func (s *QueueService) Statuses(ctx context.Context, workdayID string) ([]QueueStatus, error) {
	statuses := make([]QueueStatus, 0, len(domain.AttentionProfiles()))
	for _, profile := range domain.AttentionProfiles() {
		waiting, err := s.repos.Tickets.CountPending(ctx, profile.Type, workdayID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		statuses = append(statuses, QueueStatus{
			AttentionType:        profile.Type,
			Prefix:               profile.Prefix,
			Waiting:              waiting,
			EstimatedWaitMinutes: s.EstimateWait(profile.Type, int(waiting)),
		})
	}
	return statuses, nil
}
