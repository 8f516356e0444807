package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// NowServingEntry is one row of the public board: a ticket currently being
// attended and the desk to approach.
type NowServingEntry struct {
	Number     string
	Module     string
	StaffName  string
	AttendedAt time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByReferenceCode(ctx context.Context, code string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, workdayID, number string) (*domain.Ticket, error)
	CountByTypeAndWorkday(ctx context.Context, attentionType domain.AttentionType, workdayID string) (int64, error)
	CountPendingBefore(ctx context.Context, attentionType domain.AttentionType, workdayID string, before time.Time) (int64, error)
	CountPending(ctx context.Context, attentionType domain.AttentionType, workdayID string) (int64, error)
	CountByWorkday(ctx context.Context, workdayID string) (int64, error)
	CountByStatusInWorkday(ctx context.Context, workdayID string) (map[domain.TicketStatus]int64, error)
	OldestPending(ctx context.Context, attentionType domain.AttentionType, workdayID string) (*domain.Ticket, error)
	PendingAtPosition(ctx context.Context, attentionType domain.AttentionType, workdayID string, position int) (*domain.Ticket, error)
	FindAttendingByStaff(ctx context.Context, staffID string) (*domain.Ticket, error)
	ListNowServing(ctx context.Context, workdayID string) ([]NowServingEntry, error)
	MarkAttending(ctx context.Context, ticketID, staffID string, at time.Time) error
	MarkClosed(ctx context.Context, ticketID string, at time.Time) error
	MarkCancelled(ctx context.Context, ticketID string) error
	MarkNoShow(ctx context.Context, ticketID string, at time.Time) error
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, reference_code, number, attention_type, status, workday_id,
               customer_id, telegram_chat_id, staff_id, created_at, attended_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, reference_code, number, attention_type, status, workday_id, customer_id, telegram_chat_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		ticket.ID,
		ticket.ReferenceCode,
		ticket.Number,
		ticket.AttentionType,
		ticket.Status,
		ticket.WorkdayID,
		ticket.CustomerID,
		ticket.TelegramChatID,
	).Scan(&ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByReferenceCode(ctx context.Context, code string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE reference_code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, workdayID, number string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE workday_id=$1 AND number=$2`
	var ticket domain.Ticket
	if err := r.scanRow(r.db.QueryRow(ctx, query, workdayID, number), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.scanRow(r.db.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) scanRow(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ReferenceCode,
		&ticket.Number,
		&ticket.AttentionType,
		&ticket.Status,
		&ticket.WorkdayID,
		&ticket.CustomerID,
		&ticket.TelegramChatID,
		&ticket.StaffID,
		&ticket.CreatedAt,
		&ticket.AttendedAt,
		&ticket.ClosedAt,
	)
}

func (r *ticketRepository) CountByTypeAndWorkday(ctx context.Context, attentionType domain.AttentionType, workdayID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE attention_type=$1 AND workday_id=$2`
	var count int64
	err := r.db.QueryRow(ctx, query, attentionType, workdayID).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountPendingBefore(ctx context.Context, attentionType domain.AttentionType, workdayID string, before time.Time) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE attention_type=$1 AND workday_id=$2 AND status=$3 AND created_at < $4`
	var count int64
	err := r.db.QueryRow(ctx, query, attentionType, workdayID, domain.TicketStatusPending, before).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountPending(ctx context.Context, attentionType domain.AttentionType, workdayID string) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE attention_type=$1 AND workday_id=$2 AND status=$3`
	var count int64
	err := r.db.QueryRow(ctx, query, attentionType, workdayID, domain.TicketStatusPending).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountByWorkday(ctx context.Context, workdayID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE workday_id=$1`
	var count int64
	err := r.db.QueryRow(ctx, query, workdayID).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountByStatusInWorkday(ctx context.Context, workdayID string) (map[domain.TicketStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM tickets WHERE workday_id=$1 GROUP BY status`
	rows, err := r.db.Query(ctx, query, workdayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) OldestPending(ctx context.Context, attentionType domain.AttentionType, workdayID string) (*domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + ` FROM tickets
        WHERE attention_type=$1 AND workday_id=$2 AND status=$3
        ORDER BY created_at ASC LIMIT 1`
	var ticket domain.Ticket
	if err := r.scanRow(r.db.QueryRow(ctx, query, attentionType, workdayID, domain.TicketStatusPending), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) PendingAtPosition(ctx context.Context, attentionType domain.AttentionType, workdayID string, position int) (*domain.Ticket, error) {
	if position < 1 {
		return nil, pgx.ErrNoRows
	}
	const query = `
        SELECT ` + ticketColumns + ` FROM tickets
        WHERE attention_type=$1 AND workday_id=$2 AND status=$3
        ORDER BY created_at ASC OFFSET $4 LIMIT 1`
	var ticket domain.Ticket
	if err := r.scanRow(r.db.QueryRow(ctx, query, attentionType, workdayID, domain.TicketStatusPending, position-1), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindAttendingByStaff(ctx context.Context, staffID string) (*domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + ` FROM tickets
        WHERE staff_id=$1 AND status=$2
        ORDER BY attended_at ASC LIMIT 1`
	var ticket domain.Ticket
	if err := r.scanRow(r.db.QueryRow(ctx, query, staffID, domain.TicketStatusAttending), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListNowServing(ctx context.Context, workdayID string) ([]NowServingEntry, error) {
	const query = `
        SELECT t.number, s.module, s.full_name, t.attended_at
        FROM tickets t JOIN staff s ON s.id = t.staff_id
        WHERE t.status=$1 AND t.workday_id=$2
        ORDER BY t.attended_at DESC`
	rows, err := r.db.Query(ctx, query, domain.TicketStatusAttending, workdayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []NowServingEntry
	for rows.Next() {
		var entry NowServingEntry
		if err := rows.Scan(&entry.Number, &entry.Module, &entry.StaffName, &entry.AttendedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// MarkAttending binds the ticket to a staff member. The status guard makes a
// lost race visible as pgx.ErrNoRows instead of silently double-assigning.
func (r *ticketRepository) MarkAttending(ctx context.Context, ticketID, staffID string, at time.Time) error {
	const query = `
        UPDATE tickets SET status=$1, staff_id=$2, attended_at=$3
        WHERE id=$4 AND status=$5`
	return r.guardedExec(ctx, query, domain.TicketStatusAttending, staffID, at, ticketID, domain.TicketStatusPending)
}

func (r *ticketRepository) MarkClosed(ctx context.Context, ticketID string, at time.Time) error {
	const query = `
        UPDATE tickets SET status=$1, closed_at=$2
        WHERE id=$3 AND status=$4`
	return r.guardedExec(ctx, query, domain.TicketStatusClosed, at, ticketID, domain.TicketStatusAttending)
}

func (r *ticketRepository) MarkCancelled(ctx context.Context, ticketID string) error {
	const query = `
        UPDATE tickets SET status=$1
        WHERE id=$2 AND status=$3`
	return r.guardedExec(ctx, query, domain.TicketStatusCancelled, ticketID, domain.TicketStatusPending)
}

func (r *ticketRepository) MarkNoShow(ctx context.Context, ticketID string, at time.Time) error {
	const query = `
        UPDATE tickets SET status=$1, closed_at=$2
        WHERE id=$3 AND status=$4`
	return r.guardedExec(ctx, query, domain.TicketStatusNoShow, at, ticketID, domain.TicketStatusAttending)
}

func (r *ticketRepository) guardedExec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
