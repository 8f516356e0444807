package domain

import "time"

// AuditEvent enumerates recorded audit event kinds.
type AuditEvent string

const (
	AuditTicketCreated      AuditEvent = "TICKET_CREATED"
	AuditTicketAssigned     AuditEvent = "TICKET_ASSIGNED"
	AuditTicketClosed       AuditEvent = "TICKET_CLOSED"
	AuditTicketCancelled    AuditEvent = "TICKET_CANCELLED"
	AuditTicketNoShow       AuditEvent = "TICKET_NO_SHOW"
	AuditMessageSent        AuditEvent = "MESSAGE_SENT"
	AuditMessageFailed      AuditEvent = "MESSAGE_FAILED"
	AuditStaffStatusChanged AuditEvent = "STAFF_STATUS_CHANGED"
	AuditWorkdayOpened      AuditEvent = "WORKDAY_OPENED"
	AuditWorkdayClosed      AuditEvent = "WORKDAY_CLOSED"
)

// AuditLog is a best-effort operational trail entry.
type AuditLog struct {
	ID         int64
	OccurredAt time.Time
	Event      AuditEvent
	Actor      string
	EntityType string
	EntityID   string
	Details    string
}
