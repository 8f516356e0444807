package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
)

// fakeUnitOfWork runs the unit against the provided repositories without a
// real transaction. An error from the closure stands in for a rollback.
type fakeUnitOfWork struct {
	repos repository.Repositories
}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	return fn(ctx, f.repos)
}

type mockWorkdayRepo struct{ mock.Mock }

func (m *mockWorkdayRepo) Create(ctx context.Context, workday *domain.Workday) error {
	return m.Called(ctx, workday).Error(0)
}

func (m *mockWorkdayRepo) Close(ctx context.Context, id string, endTime time.Time) error {
	return m.Called(ctx, id, endTime).Error(0)
}

func (m *mockWorkdayRepo) GetByID(ctx context.Context, id string) (*domain.Workday, error) {
	args := m.Called(ctx, id)
	if workday, ok := args.Get(0).(*domain.Workday); ok {
		return workday, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkdayRepo) GetOpen(ctx context.Context) (*domain.Workday, error) {
	args := m.Called(ctx)
	if workday, ok := args.Get(0).(*domain.Workday); ok {
		return workday, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkdayRepo) ListRecent(ctx context.Context, limit int) ([]domain.Workday, error) {
	args := m.Called(ctx, limit)
	if workdays, ok := args.Get(0).([]domain.Workday); ok {
		return workdays, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTicketRepo struct{ mock.Mock }

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) GetByReferenceCode(ctx context.Context, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, code)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) GetByNumber(ctx context.Context, workdayID, number string) (*domain.Ticket, error) {
	args := m.Called(ctx, workdayID, number)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) CountByTypeAndWorkday(ctx context.Context, attentionType domain.AttentionType, workdayID string) (int64, error) {
	args := m.Called(ctx, attentionType, workdayID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketRepo) CountPendingBefore(ctx context.Context, attentionType domain.AttentionType, workdayID string, before time.Time) (int64, error) {
	args := m.Called(ctx, attentionType, workdayID, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketRepo) CountPending(ctx context.Context, attentionType domain.AttentionType, workdayID string) (int64, error) {
	args := m.Called(ctx, attentionType, workdayID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketRepo) CountByWorkday(ctx context.Context, workdayID string) (int64, error) {
	args := m.Called(ctx, workdayID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketRepo) CountByStatusInWorkday(ctx context.Context, workdayID string) (map[domain.TicketStatus]int64, error) {
	args := m.Called(ctx, workdayID)
	if counts, ok := args.Get(0).(map[domain.TicketStatus]int64); ok {
		return counts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) OldestPending(ctx context.Context, attentionType domain.AttentionType, workdayID string) (*domain.Ticket, error) {
	args := m.Called(ctx, attentionType, workdayID)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) PendingAtPosition(ctx context.Context, attentionType domain.AttentionType, workdayID string, position int) (*domain.Ticket, error) {
	args := m.Called(ctx, attentionType, workdayID, position)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) FindAttendingByStaff(ctx context.Context, staffID string) (*domain.Ticket, error) {
	args := m.Called(ctx, staffID)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) ListNowServing(ctx context.Context, workdayID string) ([]repository.NowServingEntry, error) {
	args := m.Called(ctx, workdayID)
	if entries, ok := args.Get(0).([]repository.NowServingEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) MarkAttending(ctx context.Context, ticketID, staffID string, at time.Time) error {
	return m.Called(ctx, ticketID, staffID, at).Error(0)
}

func (m *mockTicketRepo) MarkClosed(ctx context.Context, ticketID string, at time.Time) error {
	return m.Called(ctx, ticketID, at).Error(0)
}

func (m *mockTicketRepo) MarkCancelled(ctx context.Context, ticketID string) error {
	return m.Called(ctx, ticketID).Error(0)
}

func (m *mockTicketRepo) MarkNoShow(ctx context.Context, ticketID string, at time.Time) error {
	return m.Called(ctx, ticketID, at).Error(0)
}

type mockStaffRepo struct{ mock.Mock }

func (m *mockStaffRepo) Create(ctx context.Context, staff *domain.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *mockStaffRepo) Update(ctx context.Context, staff *domain.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *mockStaffRepo) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	args := m.Called(ctx, id)
	if staff, ok := args.Get(0).(*domain.Staff); ok {
		return staff, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStaffRepo) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	args := m.Called(ctx, email)
	if staff, ok := args.Get(0).(*domain.Staff); ok {
		return staff, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStaffRepo) List(ctx context.Context) ([]domain.Staff, error) {
	args := m.Called(ctx)
	if members, ok := args.Get(0).([]domain.Staff); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStaffRepo) FindAvailableForType(ctx context.Context, attentionType domain.AttentionType) (*domain.Staff, error) {
	args := m.Called(ctx, attentionType)
	if staff, ok := args.Get(0).(*domain.Staff); ok {
		return staff, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStaffRepo) SetBusy(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockStaffRepo) SetStatus(ctx context.Context, id string, status domain.StaffStatus, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Create(ctx context.Context, message *domain.OutboxMessage) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockOutboxRepo) ExistsForTicketTemplate(ctx context.Context, ticketID string, template domain.MessageTemplate) (bool, error) {
	args := m.Called(ctx, ticketID, template)
	return args.Bool(0), args.Error(1)
}

func (m *mockOutboxRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, now, limit)
	if messages, ok := args.Get(0).([]domain.OutboxMessage); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOutboxRepo) MarkSent(ctx context.Context, id string, sentAt time.Time, attemptCount int) error {
	return m.Called(ctx, id, sentAt, attemptCount).Error(0)
}

func (m *mockOutboxRepo) Reschedule(ctx context.Context, id string, attemptCount int, nextAttemptAt time.Time) error {
	return m.Called(ctx, id, attemptCount, nextAttemptAt).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id string, attemptCount int) error {
	return m.Called(ctx, id, attemptCount).Error(0)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Record(ctx context.Context, entry *domain.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

// testRepos builds a Repositories bundle over fresh mocks.
func testRepos() (repository.Repositories, *mockWorkdayRepo, *mockTicketRepo, *mockStaffRepo, *mockOutboxRepo) {
	workdays := &mockWorkdayRepo{}
	tickets := &mockTicketRepo{}
	staff := &mockStaffRepo{}
	outbox := &mockOutboxRepo{}
	repos := repository.Repositories{
		Workdays: workdays,
		Tickets:  tickets,
		Staff:    staff,
		Outbox:   outbox,
		Audit:    &mockAuditRepo{},
	}
	return repos, workdays, tickets, staff, outbox
}
