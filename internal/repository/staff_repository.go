package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// StaffRepository handles persistence for branch staff.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.Staff) error
	Update(ctx context.Context, staff *domain.Staff) error
	GetByID(ctx context.Context, id string) (*domain.Staff, error)
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
	List(ctx context.Context) ([]domain.Staff, error)
	// FindAvailableForType picks the AVAILABLE member supporting the given
	// category who has been idle the longest.
	FindAvailableForType(ctx context.Context, attentionType domain.AttentionType) (*domain.Staff, error)
	// SetBusy guards on AVAILABLE so two concurrent matches cannot claim the
	// same member; a lost race surfaces as pgx.ErrNoRows.
	SetBusy(ctx context.Context, id string, at time.Time) error
	SetStatus(ctx context.Context, id string, status domain.StaffStatus, at time.Time) error
}

type staffRepository struct {
	db Querier
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db Querier) StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, full_name, email, password_hash, module, status, attention_types,
               last_status_change, created_at, updated_at`

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	const query = `
        INSERT INTO staff (id, full_name, email, password_hash, module, status, attention_types, last_status_change)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		staff.ID,
		staff.FullName,
		staff.Email,
		staff.PasswordHash,
		staff.Module,
		staff.Status,
		attentionTypesToStrings(staff.AttentionTypes),
		staff.LastStatusChange,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.Staff) error {
	const query = `
        UPDATE staff
        SET full_name=$1, email=$2, password_hash=$3, module=$4, attention_types=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		staff.FullName,
		staff.Email,
		staff.PasswordHash,
		staff.Module,
		attentionTypesToStrings(staff.AttentionTypes),
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	const query = `SELECT ` + staffColumns + ` FROM staff WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	const query = `SELECT ` + staffColumns + ` FROM staff WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Staff, error) {
	var staff domain.Staff
	var types []string
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.FullName,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Module,
		&staff.Status,
		&types,
		&staff.LastStatusChange,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	staff.AttentionTypes = stringsToAttentionTypes(types)
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context) ([]domain.Staff, error) {
	const query = `SELECT ` + staffColumns + ` FROM staff ORDER BY full_name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Staff
	for rows.Next() {
		var staff domain.Staff
		var types []string
		if err := rows.Scan(
			&staff.ID,
			&staff.FullName,
			&staff.Email,
			&staff.PasswordHash,
			&staff.Module,
			&staff.Status,
			&types,
			&staff.LastStatusChange,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		staff.AttentionTypes = stringsToAttentionTypes(types)
		result = append(result, staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) FindAvailableForType(ctx context.Context, attentionType domain.AttentionType) (*domain.Staff, error) {
	const query = `
        SELECT ` + staffColumns + ` FROM staff
        WHERE status=$1 AND $2 = ANY(attention_types)
        ORDER BY last_status_change ASC LIMIT 1`
	var staff domain.Staff
	var types []string
	if err := r.db.QueryRow(ctx, query, domain.StaffStatusAvailable, string(attentionType)).Scan(
		&staff.ID,
		&staff.FullName,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Module,
		&staff.Status,
		&types,
		&staff.LastStatusChange,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	staff.AttentionTypes = stringsToAttentionTypes(types)
	return &staff, nil
}

func (r *staffRepository) SetBusy(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE staff SET status=$1, last_status_change=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.db.Exec(ctx, query, domain.StaffStatusBusy, at, id, domain.StaffStatusAvailable)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) SetStatus(ctx context.Context, id string, status domain.StaffStatus, at time.Time) error {
	const query = `
        UPDATE staff SET status=$1, last_status_change=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, status, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func attentionTypesToStrings(types []domain.AttentionType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func stringsToAttentionTypes(raw []string) []domain.AttentionType {
	out := make([]domain.AttentionType, len(raw))
	for i, s := range raw {
		out[i] = domain.AttentionType(s)
	}
	return out
}
