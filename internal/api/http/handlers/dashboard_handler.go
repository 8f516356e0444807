package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/service"
)

// DashboardHandler serves the internal dashboard and the public board.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Metrics GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.service.Metrics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

// PublicBoard GET /api/public/board. Open endpoint for the lobby display.
func (h *DashboardHandler) PublicBoard(c *fiber.Ctx) error {
	entries, err := h.service.NowServing(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
