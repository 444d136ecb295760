package handler

import (
	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	service service.AlertService
}

func NewAlertHandler(s service.AlertService) *AlertHandler {
	return &AlertHandler{service: s}
}

func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.ListAlerts(c.UserContext(), model.AlertStatus(c.Query("status")))
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, alerts)
}

// CheckAlerts runs the alert rules on demand.
// POST /api/v1/alerts/check
func (h *AlertHandler) CheckAlerts(c *fiber.Ctx) error {
	result, err := h.service.CheckAndCreateAlerts(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, result)
}

func (h *AlertHandler) ResolveAlert(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	alert, err := h.service.ResolveAlert(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Alert resolved", alert)
}

func (h *AlertHandler) IgnoreAlert(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	alert, err := h.service.IgnoreAlert(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Alert ignored", alert)
}
