package worker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
)

type mockOutbox struct{ mock.Mock }

func (m *mockOutbox) Create(ctx context.Context, message *domain.OutboxMessage) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockOutbox) ExistsForTicketTemplate(ctx context.Context, ticketID string, template domain.MessageTemplate) (bool, error) {
	args := m.Called(ctx, ticketID, template)
	return args.Bool(0), args.Error(1)
}

func (m *mockOutbox) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, now, limit)
	if messages, ok := args.Get(0).([]domain.OutboxMessage); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOutbox) MarkSent(ctx context.Context, id string, sentAt time.Time, attemptCount int) error {
	return m.Called(ctx, id, sentAt, attemptCount).Error(0)
}

func (m *mockOutbox) Reschedule(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error {
	return m.Called(ctx, id, attemptCount, nextAttemptAt).Error(0)
}

func (m *mockOutbox) MarkFailed(ctx context.Context, id string, attemptCount int) error {
	return m.Called(ctx, id, attemptCount).Error(0)
}

type mockTransport struct{ mock.Mock }

func (m *mockTransport) Send(ctx context.Context, destination, content string) error {
	return m.Called(ctx, destination, content).Error(0)
}

// stubWorkdayRepo serves the one read the watcher needs. The embedded
// interface keeps the stub small; unexpected calls panic loudly.
type stubWorkdayRepo struct {
	repository.WorkdayRepository
	open *domain.Workday
}

func (s *stubWorkdayRepo) GetOpen(ctx context.Context) (*domain.Workday, error) {
	if s.open == nil {
		return nil, pgx.ErrNoRows
	}
	return s.open, nil
}

type stubTicketRepo struct {
	repository.TicketRepository
	atPosition map[domain.AttentionType]*domain.Ticket
}

func (s *stubTicketRepo) PendingAtPosition(ctx context.Context, attentionType domain.AttentionType, workdayID string, position int) (*domain.Ticket, error) {
	if ticket, ok := s.atPosition[attentionType]; ok {
		return ticket, nil
	}
	return nil, pgx.ErrNoRows
}
