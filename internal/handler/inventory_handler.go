package handler

import (
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.CatalogService
}

func NewInventoryHandler(s service.CatalogService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// ListInventory serves the inventory page.
// GET /api/v1/inventory?search=&category=&stock_status=low|out
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	view, err := h.service.ListInventory(c.UserContext(), repository.InventoryFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Stock:    c.Query("stock_status"),
	})
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, view)
}

// GetProducts lists active products for the order form.
// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, product.ToResponse())
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	product, err := h.service.CreateProduct(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Product '"+product.Name+"' created successfully!", product.ToResponse())
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req service.EditProductRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	product, err := h.service.EditProduct(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Product '"+product.Name+"' updated successfully!", product.ToResponse())
}

func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req service.UpdateStockRequest
	if err := parseBody(c, &req); err != nil {
		return RespondError(c, err)
	}
	change, err := h.service.UpdateStock(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Stock updated for "+change.Product.Name, fiber.Map{
		"product":   change.Product.ToResponse(),
		"old_stock": change.OldStock,
		"new_stock": change.NewStock,
	})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	product, err := h.service.DeleteProduct(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return RespondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Product '"+product.Name+"' deleted successfully!", fiber.Map{"id": product.ID})
}

// GetMovements returns a product's stock history.
// GET /api/v1/products/:id/movements?limit=50
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return RespondError(c, err)
	}
	movements, err := h.service.ProductMovements(c.UserContext(), id, c.QueryInt("limit", 50))
	if err != nil {
		return RespondError(c, err)
	}
	return ok(c, movements)
}
