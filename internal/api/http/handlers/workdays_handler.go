package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// WorkdaysHandler manages workday session endpoints.
type WorkdaysHandler struct {
	service *service.WorkdayService
}

// NewWorkdaysHandler constructs handler.
func NewWorkdaysHandler(workdayService *service.WorkdayService) *WorkdaysHandler {
	return &WorkdaysHandler{service: workdayService}
}

// Open POST /api/workdays/open.
func (h *WorkdaysHandler) Open(c *fiber.Ctx) error {
	principal, ok := auth.StaffFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}

	workday, err := h.service.Open(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": workday})
}

// Close POST /api/workdays/close.
func (h *WorkdaysHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.StaffFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}

	summary, err := h.service.Close(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Current GET /api/workdays/current.
func (h *WorkdaysHandler) Current(c *fiber.Ctx) error {
	workday, err := h.service.Current(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workday})
}

// History GET /api/workdays/history.
func (h *WorkdaysHandler) History(c *fiber.Ctx) error {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		limit = parsed
	}

	summaries, err := h.service.History(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries})
}
