package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// StaffHandler manages staff administration and desk actions.
type StaffHandler struct {
	staff   *service.StaffService
	tickets *service.TicketService
	auth    *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService, ticketService *service.TicketService, authService *service.AuthService) *StaffHandler {
	return &StaffHandler{staff: staffService, tickets: ticketService, auth: authService}
}

// Login POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"staff":      dto.StaffView(result.Staff),
	}})
}

// CreateStaff POST /api/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, err := h.staff.Create(c.UserContext(), service.CreateStaffInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       req.Password,
		Module:         req.Module,
		AttentionTypes: req.AttentionTypes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.StaffView(staff)})
}

// ListStaff GET /api/staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	overviews, err := h.staff.List(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.StaffResponse, 0, len(overviews))
	for _, overview := range overviews {
		view := dto.StaffView(overview.Staff)
		view.CurrentTicket = overview.CurrentTicket
		items = append(items, view)
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetStaff GET /api/staff/:id.
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	staff, err := h.staff.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffView(staff)})
}

// UpdateStaff PATCH /api/staff/:id.
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, err := h.staff.Update(c.UserContext(), c.Params("id"), service.UpdateStaffInput{
		FullName:       req.FullName,
		Module:         req.Module,
		AttentionTypes: req.AttentionTypes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffView(staff)})
}

// SetStatus PATCH /api/staff/:id/status.
func (h *StaffHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.StaffFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.SetStaffStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, err := h.staff.SetStatus(c.UserContext(), c.Params("id"), domain.StaffStatus(req.Status), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffView(staff)})
}

// FinishCurrent POST /api/staff/me/finish. Closes the authenticated staff
// member's ticket in progress and frees them for the next assignment.
func (h *StaffHandler) FinishCurrent(c *fiber.Ctx) error {
	principal, ok := auth.StaffFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}

	ticket, err := h.tickets.FinishCurrent(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.TicketView(ticket)})
}

// NoShowCurrent POST /api/staff/me/no-show. Marks the ticket in progress as
// NO_SHOW when the customer never arrived at the desk.
func (h *StaffHandler) NoShowCurrent(c *fiber.Ctx) error {
	principal, ok := auth.StaffFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}

	ticket, err := h.tickets.NoShowCurrent(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.TicketView(ticket)})
}
