package handler

import (
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler manages staff accounts and lists roles.
type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, users)
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	user, err := h.service.CreateUser(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "User "+user.Username+" created successfully!", user.ToResponse())
}

func (h *UserHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.service.ListRoles(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, roles)
}
