package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// DashboardHandler serves aggregate ticket counts.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Stats GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.Success(dto.DashboardResponse{
		Total:         stats.Total,
		OpenCount:     stats.Open,
		ClosedCount:   stats.Closed,
		ByState:       namedCounts(stats.ByState),
		ByCriticality: namedCounts(stats.ByCriticality),
	}, ""))
}
