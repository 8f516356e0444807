package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// WorkdayRepository handles persistence for business sessions.
type WorkdayRepository interface {
	Create(ctx context.Context, workday *domain.Workday) error
	Close(ctx context.Context, id string, endTime time.Time) error
	GetByID(ctx context.Context, id string) (*domain.Workday, error)
	GetOpen(ctx context.Context) (*domain.Workday, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Workday, error)
}

type workdayRepository struct {
	db Querier
}

// NewWorkdayRepository instantiates the repository.
func NewWorkdayRepository(db Querier) WorkdayRepository {
	return &workdayRepository{db: db}
}

func (r *workdayRepository) Create(ctx context.Context, workday *domain.Workday) error {
	const query = `
        INSERT INTO workdays (id, status, start_time)
        VALUES ($1,$2,$3)
        RETURNING start_time`
	return r.db.QueryRow(ctx, query,
		workday.ID,
		workday.Status,
		workday.StartTime,
	).Scan(&workday.StartTime)
}

func (r *workdayRepository) Close(ctx context.Context, id string, endTime time.Time) error {
	const query = `
        UPDATE workdays SET status=$1, end_time=$2
        WHERE id=$3 AND status=$4`
	cmd, err := r.db.Exec(ctx, query, domain.WorkdayStatusClosed, endTime, id, domain.WorkdayStatusOpen)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workdayRepository) GetByID(ctx context.Context, id string) (*domain.Workday, error) {
	const query = `SELECT id, status, start_time, end_time FROM workdays WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *workdayRepository) GetOpen(ctx context.Context) (*domain.Workday, error) {
	const query = `
        SELECT id, status, start_time, end_time FROM workdays
        WHERE status=$1 ORDER BY start_time DESC LIMIT 1`
	return r.fetchSingle(ctx, query, domain.WorkdayStatusOpen)
}

func (r *workdayRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Workday, error) {
	var workday domain.Workday
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&workday.ID,
		&workday.Status,
		&workday.StartTime,
		&workday.EndTime,
	); err != nil {
		return nil, err
	}
	return &workday, nil
}

func (r *workdayRepository) ListRecent(ctx context.Context, limit int) ([]domain.Workday, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT id, status, start_time, end_time FROM workdays
        ORDER BY start_time DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Workday
	for rows.Next() {
		var workday domain.Workday
		if err := rows.Scan(&workday.ID, &workday.Status, &workday.StartTime, &workday.EndTime); err != nil {
			return nil, err
		}
		result = append(result, workday)
	}
	return result, rows.Err()
}
