package domain

import "time"

// TicketStatus enumerates lifecycle states for queue tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusAttending TicketStatus = "ATTENDING"
	TicketStatusClosed    TicketStatus = "CLOSED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
	TicketStatusNoShow    TicketStatus = "NO_SHOW"
)

// Terminal reports whether a status can never change again.
func (s TicketStatus) Terminal() bool {
	switch s {
	case TicketStatusClosed, TicketStatusCancelled, TicketStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows the move.
// PENDING -> ATTENDING -> CLOSED is the happy path; PENDING -> CANCELLED and
// ATTENDING -> NO_SHOW are the alternate terminal edges. No state is skipped
// and no terminal state is re-enterable.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch s {
	case TicketStatusPending:
		return next == TicketStatusAttending || next == TicketStatusCancelled
	case TicketStatusAttending:
		return next == TicketStatusClosed || next == TicketStatusNoShow
	}
	return false
}

// Ticket is the aggregate for a customer's turn in a branch queue.
type Ticket struct {
	ID             string
	ReferenceCode  string
	Number         string
	AttentionType  AttentionType
	Status         TicketStatus
	WorkdayID      string
	CustomerID     *string
	TelegramChatID *string
	StaffID        *string
	CreatedAt      time.Time
	AttendedAt     *time.Time
	ClosedAt       *time.Time
}

// HasContact reports whether the ticket can receive notifications.
func (t *Ticket) HasContact() bool {
	return t.TelegramChatID != nil && *t.TelegramChatID != ""
}
