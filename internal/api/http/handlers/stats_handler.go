package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-service/internal/observability"
)

// StatsHandler serves the request/error counters polled by the dashboard
// widgets.
type StatsHandler struct {
	metrics *observability.Metrics
}

// NewStatsHandler constructs handler.
func NewStatsHandler(metrics *observability.Metrics) *StatsHandler {
	return &StatsHandler{metrics: metrics}
}

// Get handles GET /admin/stats.
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
