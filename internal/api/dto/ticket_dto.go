package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	AttentionType  string  `json:"attention_type"`
	CustomerID     *string `json:"customer_id"`
	TelegramChatID *string `json:"telegram_chat_id"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ReferenceCode string              `json:"reference_code"`
	Number        string              `json:"number"`
	AttentionType string              `json:"attention_type"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	AttendedAt    *time.Time          `json:"attended_at,omitempty"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
}

// TicketCreatedResponse adds the queue snapshot at issue time.
type TicketCreatedResponse struct {
	TicketResponse
	Position             int   `json:"position"`
	EstimatedWaitMinutes int64 `json:"estimated_wait_minutes"`
}

// TicketStatusResponse is the progress view for a waiting customer.
type TicketStatusResponse struct {
	TicketResponse
	Position             int    `json:"position,omitempty"`
	EstimatedWaitMinutes int64  `json:"estimated_wait_minutes,omitempty"`
	Module               string `json:"module,omitempty"`
	StaffName            string `json:"staff_name,omitempty"`
}

// TicketView maps a domain ticket to its public shape. The internal id and
// contact details never leave the service.
func TicketView(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ReferenceCode: ticket.ReferenceCode,
		Number:        ticket.Number,
		AttentionType: string(ticket.AttentionType),
		Status:        ticket.Status,
		CreatedAt:     ticket.CreatedAt,
		AttendedAt:    ticket.AttendedAt,
		ClosedAt:      ticket.ClosedAt,
	}
}
