// Package router mounts the HTTP API on a fiber app.
package router

import (
	"go-flowershop-admin/internal/handler"
	"go-flowershop-admin/internal/middleware"
	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Inventory *handler.InventoryHandler
	Customer  *handler.CustomerHandler
	Order     *handler.OrderHandler
	Payment   *handler.PaymentHandler
	Alert     *handler.AlertHandler
	Dashboard *handler.DashboardHandler
	User      *handler.UserHandler
	Admin     *handler.AdminHandler
}

// Register mounts /api/v1 and, when hub is non-nil, the /ws live feed.
func Register(app *fiber.App, h Handlers, auth service.AuthService, hub *ws.Hub) {
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(auth)
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/validate-token", h.Auth.ValidateToken)
	authGroup.Post("/logout", requireAuth, h.Auth.Logout)
	authGroup.Post("/change-password", requireAuth, h.Auth.ChangePassword)
	authGroup.Get("/me", requireAuth, h.Auth.Me)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard", can(model.PrivReportView), h.Dashboard.GetDashboardStats)
	reports := protected.Group("/reports", can(model.PrivReportView))
	reports.Get("/sales", h.Dashboard.GetSalesOverview)
	reports.Get("/calendar", h.Dashboard.GetCalendar)
	reports.Get("/payment-methods", h.Dashboard.GetPaymentMethods)
	reports.Get("/top-sellers", h.Dashboard.GetTopSellers)
	reports.Get("/inventory", h.Dashboard.GetInventorySummary)

	protected.Get("/customers", can(model.PrivCustomerView), h.Customer.GetCustomers)
	protected.Get("/customers/:id", can(model.PrivCustomerView), h.Customer.GetCustomer)
	protected.Post("/customers", can(model.PrivCustomerCreate), h.Customer.CreateCustomer)

	protected.Get("/inventory", can(model.PrivProductView), h.Inventory.ListInventory)
	// order takers pick from the catalog without managing it
	protected.Get("/products", middleware.RequireAnyPrivilege(model.PrivProductView, model.PrivOrderCreate), h.Inventory.GetProducts)
	protected.Get("/products/:id", can(model.PrivProductView), h.Inventory.GetProduct)
	protected.Get("/products/:id/movements", can(model.PrivProductView), h.Inventory.GetMovements)
	protected.Post("/products", can(model.PrivProductCreate), h.Inventory.CreateProduct)
	protected.Put("/products/:id", can(model.PrivProductUpdate), h.Inventory.UpdateProduct)
	protected.Put("/products/:id/stock", can(model.PrivProductUpdate), h.Inventory.UpdateStock)
	protected.Delete("/products/:id", can(model.PrivProductDelete), h.Inventory.DeleteProduct)

	protected.Get("/orders", can(model.PrivOrderView), h.Order.GetOrders)
	protected.Get("/orders/:id", can(model.PrivOrderView), h.Order.GetOrder)
	protected.Post("/orders", can(model.PrivOrderCreate), h.Order.CreateOrder)
	protected.Put("/orders/:id", can(model.PrivOrderUpdate), h.Order.UpdateOrder)
	protected.Put("/orders/:id/status", can(model.PrivOrderUpdate), h.Order.UpdateStatus)
	protected.Put("/orders/:id/fulfilled-by", can(model.PrivOrderUpdate), h.Order.UpdateFulfilledBy)
	protected.Post("/orders/:id/recalculate", can(model.PrivOrderUpdate), h.Order.RecalculateTotals)

	protected.Get("/payments", can(model.PrivPaymentView), h.Payment.GetPayments)
	protected.Get("/payments/:id", can(model.PrivPaymentView), h.Payment.GetPayment)
	protected.Put("/payments/:id", can(model.PrivPaymentUpdate), h.Payment.UpdatePayment)

	protected.Get("/alerts", can(model.PrivAlertView), h.Alert.GetAlerts)
	protected.Post("/alerts/check", can(model.PrivAlertUpdate), h.Alert.CheckAlerts)
	protected.Put("/alerts/:id/resolve", can(model.PrivAlertUpdate), h.Alert.ResolveAlert)
	protected.Put("/alerts/:id/ignore", can(model.PrivAlertUpdate), h.Alert.IgnoreAlert)

	superuser := middleware.RequireSuperuser()
	protected.Get("/users", superuser, h.User.GetUsers)
	protected.Post("/users", superuser, h.User.CreateUser)
	protected.Get("/roles", superuser, h.User.GetRoles)
	protected.Delete("/admin/data", superuser, h.Admin.ClearAllData)

	if hub == nil {
		return
	}
	app.Use("/ws", middleware.RequireSocketAuth(auth), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(hub.Serve))
}
