package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

func singleOpenViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "uq_workdays_single_open"}
}

func newWorkdayService(repos repository.Repositories, cfg config.WorkdayConfig) *WorkdayService {
	logger := zap.NewNop()
	return NewWorkdayService(&fakeUnitOfWork{repos: repos}, repos, NewAuditService(nil, logger), cfg, logger)
}

func TestOpenWorkdayWhenNoneExists(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows)
	workdays.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{StrictOpen: true})
	opened, err := svc.Open(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, domain.WorkdayStatusOpen, opened.Status)
	require.NotEmpty(t, opened.ID)
	workdays.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
}

func TestStrictOpenRejectsSecondWorkday(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(&domain.Workday{
		ID: "wd-1", Status: domain.WorkdayStatusOpen,
	}, nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{StrictOpen: true})
	_, err := svc.Open(context.Background(), "admin")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	workdays.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOpenReplacesStaleWorkdayByDefault(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(&domain.Workday{
		ID: "wd-old", Status: domain.WorkdayStatusOpen,
	}, nil)
	workdays.On("Close", mock.Anything, "wd-old", mock.Anything).Return(nil)
	workdays.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{StrictOpen: false})
	opened, err := svc.Open(context.Background(), "admin")
	require.NoError(t, err)
	require.NotEqual(t, "wd-old", opened.ID)
	workdays.AssertCalled(t, "Close", mock.Anything, "wd-old", mock.Anything)
}

func TestOpenLosingTheRaceReturnsTheWinner(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	winner := &domain.Workday{ID: "wd-winner", Status: domain.WorkdayStatusOpen}
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows).Once()
	workdays.On("Create", mock.Anything, mock.Anything).Return(singleOpenViolation())
	workdays.On("GetOpen", mock.Anything).Return(winner, nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{StrictOpen: false})
	opened, err := svc.Open(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, "wd-winner", opened.ID)
}

func TestStrictOpenLosingTheRaceConflicts(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows).Once()
	workdays.On("Create", mock.Anything, mock.Anything).Return(singleOpenViolation())
	workdays.On("GetOpen", mock.Anything).Return(&domain.Workday{
		ID: "wd-winner", Status: domain.WorkdayStatusOpen,
	}, nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{StrictOpen: true})
	_, err := svc.Open(context.Background(), "admin")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCloseWorkdayReturnsSummary(t *testing.T) {
	repos, workdays, tickets, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(&domain.Workday{
		ID: "wd-1", Status: domain.WorkdayStatusOpen,
	}, nil)
	workdays.On("Close", mock.Anything, "wd-1", mock.Anything).Return(nil)
	tickets.On("CountByWorkday", mock.Anything, "wd-1").Return(int64(12), nil)
	tickets.On("CountByStatusInWorkday", mock.Anything, "wd-1").Return(map[domain.TicketStatus]int64{
		domain.TicketStatusClosed:  9,
		domain.TicketStatusPending: 2,
		domain.TicketStatusNoShow:  1,
	}, nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{})
	summary, err := svc.Close(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, domain.WorkdayStatusClosed, summary.Workday.Status)
	require.NotNil(t, summary.Workday.EndTime)
	require.Equal(t, int64(12), summary.TotalTickets)
	require.Equal(t, int64(9), summary.ByStatus[domain.TicketStatusClosed])
}

func TestCloseWithoutOpenWorkdayConflicts(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows)

	svc := newWorkdayService(repos, config.WorkdayConfig{})
	_, err := svc.Close(context.Background(), "admin")
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCurrentOpensLazilyWhenAllowed(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows)
	workdays.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newWorkdayService(repos, config.WorkdayConfig{LazyOpen: true})
	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.WorkdayStatusOpen, current.Status)
}

func TestCurrentWithoutLazyOpenIsNotFound(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows)

	svc := newWorkdayService(repos, config.WorkdayConfig{LazyOpen: false})
	_, err := svc.Current(context.Background())
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestEnsureOpenWithoutLazyOpenConflicts(t *testing.T) {
	repos, workdays, _, _, _ := testRepos()
	workdays.On("GetOpen", mock.Anything).Return(nil, pgx.ErrNoRows)

	svc := newWorkdayService(repos, config.WorkdayConfig{LazyOpen: false})
	_, err := svc.EnsureOpen(context.Background(), repos)
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}
