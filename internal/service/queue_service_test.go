package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/queue-service/internal/domain"
)

func TestEstimateWaitScalesWithPosition(t *testing.T) {
	repos, _, _, _, _ := testRepos()
	svc := NewQueueService(repos)

	tests := []struct {
		name          string
		attentionType domain.AttentionType
		position      int
		want          int64
	}{
		{"first in caja", domain.AttentionCaja, 1, 5},
		{"third in caja", domain.AttentionCaja, 3, 15},
		{"second personal banker", domain.AttentionPersonalBanker, 2, 30},
		{"first empresas", domain.AttentionEmpresas, 1, 20},
		{"fourth gerencia", domain.AttentionGerencia, 4, 120},
		{"already being served", domain.AttentionCaja, 0, 0},
		{"unknown type", domain.AttentionType("OTHER"), 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, svc.EstimateWait(tt.attentionType, tt.position))
		})
	}
}

func TestRankCountsOnlyEarlierPending(t *testing.T) {
	repos, _, tickets, _, _ := testRepos()
	svc := NewQueueService(repos)
	ticket := &domain.Ticket{
		AttentionType: domain.AttentionCaja,
		Status:        domain.TicketStatusPending,
		WorkdayID:     "wd-1",
		CreatedAt:     time.Now().UTC(),
	}
	tickets.On("CountPendingBefore", mock.Anything, domain.AttentionCaja, "wd-1", ticket.CreatedAt).Return(int64(4), nil)

	rank, err := svc.Rank(context.Background(), tickets, ticket)
	require.NoError(t, err)
	require.Equal(t, 5, rank)
}

func TestRankIsZeroForNonPendingTicket(t *testing.T) {
	repos, _, tickets, _, _ := testRepos()
	svc := NewQueueService(repos)

	rank, err := svc.Rank(context.Background(), tickets, &domain.Ticket{
		Status: domain.TicketStatusAttending,
	})
	require.NoError(t, err)
	require.Equal(t, 0, rank)
	tickets.AssertNotCalled(t, "CountPendingBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusesCoverEveryQueue(t *testing.T) {
	repos, _, tickets, _, _ := testRepos()
	tickets.On("CountPending", mock.Anything, domain.AttentionCaja, "wd-1").Return(int64(2), nil)
	tickets.On("CountPending", mock.Anything, mock.Anything, "wd-1").Return(int64(0), nil)

	svc := NewQueueService(repos)
	statuses, err := svc.Statuses(context.Background(), "wd-1")
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	byType := make(map[domain.AttentionType]QueueStatus, len(statuses))
	for _, status := range statuses {
		byType[status.AttentionType] = status
	}
	require.Equal(t, int64(2), byType[domain.AttentionCaja].Waiting)
	// Two waiting at 5 minutes each.
	require.Equal(t, int64(10), byType[domain.AttentionCaja].EstimatedWaitMinutes)
	require.Equal(t, int64(0), byType[domain.AttentionGerencia].Waiting)
	require.Equal(t, int64(0), byType[domain.AttentionGerencia].EstimatedWaitMinutes)
}

func TestStatusesEmptyQueueEstimatesZero(t *testing.T) {
	repos, _, tickets, _, _ := testRepos()
	tickets.On("CountPending", mock.Anything, mock.Anything, "wd-1").Return(int64(0), nil)

	svc := NewQueueService(repos)
	statuses, err := svc.Statuses(context.Background(), "wd-1")
	require.NoError(t, err)
	for _, status := range statuses {
		require.Zero(t, status.Waiting)
		require.Zero(t, status.EstimatedWaitMinutes, "queue %s is empty but reports a wait", status.AttentionType)
	}
}
