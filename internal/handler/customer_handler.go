package handler

import (
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CustomerHandler struct {
	service service.CustomerService
}

func NewCustomerHandler(s service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: s}
}

// GetCustomers lists customers with their order counts.
// GET /api/v1/customers?search=
func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.service.ListCustomers(c.UserContext(), c.Query("search"))
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, customers)
}

func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	customer, err := h.service.GetCustomer(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, customer)
}

func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req service.CreateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	customer, err := h.service.CreateCustomer(c.UserContext(), req)
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Customer "+customer.FullName()+" created successfully!", customer)
}
