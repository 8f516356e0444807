package domain

import (
	"fmt"
	"time"
)

// MessageTemplate identifies the fixed notification templates. Content is
// rendered once at enqueue time so retries resend byte-identical text.
type MessageTemplate string

const (
	TemplateTicketCreated MessageTemplate = "TICKET_CREATED"
	TemplateNearTurn      MessageTemplate = "NEAR_TURN"
	TemplateTurnActive    MessageTemplate = "TURN_ACTIVE"
)

// MessageStatus enumerates outbox delivery states.
type MessageStatus string

const (
	MessageStatusPending MessageStatus = "PENDING"
	MessageStatusSent    MessageStatus = "SENT"
	MessageStatusFailed  MessageStatus = "FAILED"
)

// OutboxMessage is a persisted notification awaiting delivery. Rows are never
// deleted; terminal states remain as an audit trail.
type OutboxMessage struct {
	ID           string
	TicketID     string
	Template     MessageTemplate
	Status       MessageStatus
	ScheduledAt  time.Time
	SentAt       *time.Time
	AttemptCount int
	Destination  string
	Content      string
	CreatedAt    time.Time
}

const (
	ticketCreatedTemplate = "✅ <b>Ticket Creado</b>\n\nTu número de turno: <b>%s</b>\nPosición en cola: <b>#%d</b>\nTiempo estimado: <b>%d minutos</b>\n\nTe notificaremos cuando estés próximo."
	nearTurnTemplate      = "⏰ <b>¡Pronto será tu turno!</b>\n\nTurno: <b>%s</b>\nFaltan aproximadamente 3 turnos.\n\nPor favor, acércate a la sucursal."
	turnActiveTemplate    = "🔔 <b>¡ES TU TURNO %s!</b>\n\nDirígete al módulo: <b>%s</b>\nAsesor: <b>%s</b>"
)

// RenderTicketCreated renders the creation confirmation message.
func RenderTicketCreated(number string, position int, waitMinutes int64) string {
	return fmt.Sprintf(ticketCreatedTemplate, number, position, waitMinutes)
}

// RenderNearTurn renders the pre-arrival alert.
func RenderNearTurn(number string) string {
	return fmt.Sprintf(nearTurnTemplate, number)
}

// RenderTurnActive renders the turn-active alert with the desk to approach.
func RenderTurnActive(number, module, staffName string) string {
	return fmt.Sprintf(turnActiveTemplate, number, module, staffName)
}
