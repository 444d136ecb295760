package middleware

import (
	"strings"

	"go-flowershop-admin/internal/handler"
	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token against the current session and
// stores the user under handler.LocalUser.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return handler.RespondError(c, apperr.Unauthorized("Missing authorization token"))
		}
		token := handler.BearerToken(c)
		if token == "" {
			return handler.RespondError(c, apperr.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return handler.RespondError(c, err)
		}

		c.Locals(handler.LocalUser, user)
		return c.Next()
	}
}

// RequireSocketAuth guards the live feed. Browsers cannot set headers on a
// websocket upgrade, so the token may also come as ?token=.
func RequireSocketAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := handler.BearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return handler.RespondError(c, apperr.Unauthorized("Missing authorization token"))
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return handler.RespondError(c, err)
		}

		c.Locals(handler.LocalUser, user)
		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege.
// Superusers always pass.
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(handler.LocalUser).(*model.User)
		if !ok {
			return handler.RespondError(c, apperr.Unauthorized("Unauthorized"))
		}
		if user.HasPrivilege(requiredPrivilege) {
			return c.Next()
		}
		return handler.RespondError(c, apperr.Forbidden("Forbidden: requires '"+requiredPrivilege+"' privilege"))
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(handler.LocalUser).(*model.User)
		if !ok {
			return handler.RespondError(c, apperr.Unauthorized("Unauthorized"))
		}
		for _, code := range requiredPrivileges {
			if user.HasPrivilege(code) {
				return c.Next()
			}
		}
		return handler.RespondError(c, apperr.Forbidden(
			"Forbidden: requires one of "+strings.Join(requiredPrivileges, ", ")+" privileges"))
	}
}

func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(handler.LocalUser).(*model.User)
		if !ok {
			return handler.RespondError(c, apperr.Unauthorized("Unauthorized"))
		}
		if !user.IsSuperuser {
			return handler.RespondError(c, apperr.Forbidden("Only superusers can perform this action"))
		}
		return c.Next()
	}
}
