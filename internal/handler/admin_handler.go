package handler

import (
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(s service.AdminService) *AdminHandler {
	return &AdminHandler{service: s}
}

// ClearAllData wipes business data. Superusers only.
// DELETE /api/v1/admin/data
func (h *AdminHandler) ClearAllData(c *fiber.Ctx) error {
	result, err := h.service.ClearAllData(c.UserContext(), actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "All data cleared successfully!", result)
}
