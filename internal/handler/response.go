package handler

import (
	"errors"
	"strconv"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// LocalUser is the fiber.Locals key holding the authenticated *model.User.
const LocalUser = "user"

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
	Code    apperr.Code `json:"code,omitempty"`
	Field   string      `json:"field,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

func ok(c *fiber.Ctx, data any) error {
	return respond(c, fiber.StatusOK, "OK", data)
}

// RespondError writes err as a failure envelope. Uncoded errors become
// INTERNAL_ERROR with a generic message.
func RespondError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(Envelope{Message: fiberErr.Message, Code: codeForStatus(fiberErr.Code)})
		}
		appErr = apperr.Internal(err, "Internal server error")
	}
	return c.Status(apperr.HTTPStatus(appErr.Code())).JSON(Envelope{
		Message: appErr.Message(),
		Code:    appErr.Code(),
		Field:   appErr.Field(),
	})
}

func codeForStatus(status int) apperr.Code {
	switch status {
	case fiber.StatusBadRequest:
		return apperr.CodeValidation
	case fiber.StatusUnauthorized:
		return apperr.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperr.CodeForbidden
	case fiber.StatusNotFound:
		return apperr.CodeNotFound
	case fiber.StatusConflict:
		return apperr.CodeConflict
	default:
		return apperr.CodeInternal
	}
}

// ErrorHandler is the fiber.Config error handler; it keeps unmatched routes
// and panics inside the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return RespondError(c, err)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Invalid JSON")
	}
	return nil
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidField("id", "must be a positive integer")
	}
	return uint(id), nil
}

func currentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(LocalUser).(*model.User)
	return user
}

func actorFrom(c *fiber.Ctx) service.Actor {
	user := currentUser(c)
	if user == nil {
		return service.SystemActor
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	return service.Actor{
		ID:        user.ID.String(),
		Name:      name,
		Email:     user.Email,
		Superuser: user.IsSuperuser,
	}
}
