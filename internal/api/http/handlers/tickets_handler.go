package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// TicketsHandler manages customer-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AttentionType == "" {
		return apperrors.NewValidationError("attention_type required", nil)
	}

	result, err := h.service.Create(c.UserContext(), service.CreateTicketInput{
		AttentionType:  req.AttentionType,
		CustomerID:     req.CustomerID,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketCreatedResponse{
		TicketResponse:       dto.TicketView(result.Ticket),
		Position:             result.Position,
		EstimatedWaitMinutes: result.EstimatedWaitMinutes,
	}})
}

// GetTicket GET /api/tickets/:code.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	result, err := h.service.Status(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.TicketStatusResponse{
		TicketResponse:       dto.TicketView(result.Ticket),
		Position:             result.Position,
		EstimatedWaitMinutes: result.EstimatedWaitMinutes,
		Module:               result.Module,
		StaffName:            result.StaffName,
	}})
}

// CancelTicket POST /api/tickets/:code/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Cancel(c.UserContext(), c.Params("code"), "customer")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketView(ticket)})
}
