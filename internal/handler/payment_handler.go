package handler

import (
	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

// GetPayments lists payments with the completed total.
// GET /api/v1/payments?search=&status=&method=
func (h *PaymentHandler) GetPayments(c *fiber.Ctx) error {
	view, err := h.service.ListPayments(c.UserContext(), repository.PaymentFilter{
		Search: c.Query("search"),
		Status: model.PaymentStatus(c.Query("status")),
		Method: model.PaymentMethod(c.Query("method")),
	})
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, view)
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	payment, err := h.service.GetPayment(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, payment)
}

func (h *PaymentHandler) UpdatePayment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req service.UpdatePaymentRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	payment, err := h.service.UpdatePayment(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Payment "+payment.PaymentNumber+" updated successfully!", payment.Summary())
}
