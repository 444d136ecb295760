package handler

import (
	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type updateFulfilledByRequest struct {
	FulfilledBy string `json:"fulfilled_by"`
}

// CreateOrder runs the whole order workflow.
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	result, err := h.service.CreateOrder(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Order "+result.Order.OrderNumber+" created successfully!", result)
}

func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), repository.OrderFilter{
		Search: c.Query("search"),
		Status: model.OrderStatus(c.Query("status")),
	})
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, order)
}

// UpdateOrder edits tax, discount, notes, delivery date and contact snapshot.
// PUT /api/v1/orders/:id
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req service.EditOrderRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	order, err := h.service.EditOrder(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order "+order.OrderNumber+" updated successfully!", order)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	order, err := h.service.UpdateOrderStatus(c.UserContext(), id, req.Status, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order "+order.OrderNumber+" status updated to "+string(order.Status), fiber.Map{
		"id":     order.ID,
		"status": order.Status,
	})
}

func (h *OrderHandler) UpdateFulfilledBy(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req updateFulfilledByRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	order, err := h.service.UpdateFulfilledBy(c.UserContext(), id, req.FulfilledBy, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Fulfilled by updated", fiber.Map{
		"id":           order.ID,
		"fulfilled_by": order.FulfilledBy,
	})
}

// RecalculateTotals re-derives subtotal and total from the stored items.
// POST /api/v1/orders/:id/recalculate
func (h *OrderHandler) RecalculateTotals(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	order, err := h.service.RecalculateTotals(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, order)
}
