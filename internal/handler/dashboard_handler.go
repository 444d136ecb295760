package handler

import (
	"time"

	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/pkg/clock"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the dashboard and the reports page.
type DashboardHandler struct {
	service service.ReportService
	clock   clock.Clock
	loc     *time.Location
}

func NewDashboardHandler(s service.ReportService, clk clock.Clock, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{service: s, clock: clk, loc: loc}
}

func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, stats)
}

func (h *DashboardHandler) GetSalesOverview(c *fiber.Ctx) error {
	overview, err := h.service.SalesOverview(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, overview)
}

// GetCalendar returns completed orders grouped by day.
// GET /api/v1/reports/calendar?year=2026 (defaults to the current local year)
func (h *DashboardHandler) GetCalendar(c *fiber.Ctx) error {
	year := c.QueryInt("year", h.clock.Now().In(h.loc).Year())
	calendar, err := h.service.Calendar(c.UserContext(), year)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, fiber.Map{"year": year, "calendar": calendar})
}

func (h *DashboardHandler) GetPaymentMethods(c *fiber.Ctx) error {
	shares, err := h.service.PaymentMethods(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, shares)
}

func (h *DashboardHandler) GetTopSellers(c *fiber.Ctx) error {
	sellers, err := h.service.TopSellers(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, sellers)
}

func (h *DashboardHandler) GetInventorySummary(c *fiber.Ctx) error {
	summary, err := h.service.InventorySummary(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, summary)
}
