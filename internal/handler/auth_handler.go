package handler

import (
	"strings"

	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	response, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Login successful", response)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return RespondError(c, apperr.Unauthorized("Unauthorized"))
	}
	if err := h.authService.Logout(c.UserContext(), user.ID); err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Logged out", nil)
}

// ValidateToken accepts the token in the body or as a bearer header.
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req validateTokenRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return RespondError(c, err)
		}
	}
	if req.Token == "" {
		req.Token = BearerToken(c)
	}
	if req.Token == "" {
		return RespondError(c, apperr.MissingField("token"))
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, response)
}

// ChangePassword changes the caller's own password and ends their sessions.
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return RespondError(c, apperr.Unauthorized("Unauthorized"))
	}
	var req service.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), user.ID, req); err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Password updated successfully", nil)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return RespondError(c, apperr.Unauthorized("Unauthorized"))
	}
	return ok(c, user.ToResponse())
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
