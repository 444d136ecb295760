// Package server assembles repositories, services and handlers into a
// ready-to-listen fiber app.
package server

import (
	"time"

	"go-flowershop-admin/internal/handler"
	"go-flowershop-admin/internal/middleware"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/router"
	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/jwt"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Options struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Clock     clock.Clock
	Location  *time.Location
	Tokens    *jwt.Manager
	AccessLog bool

	// Registry receives the metrics collectors; nil disables /metrics.
	Registry         *prometheus.Registry
	MetricsNamespace string

	// Hub carries the live feed; nil disables /ws and event publishing.
	Hub *ws.Hub
}

type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Catalog  service.CatalogService
	Customer service.CustomerService
	Alerts   service.AlertService
	Orders   service.OrderService
	Payments service.PaymentService
	Reports  service.ReportService
	Admin    service.AdminService
}

type Server struct {
	App      *fiber.App
	Services Services
}

func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	var m *metrics.Metrics
	if opts.Registry != nil {
		namespace := opts.MetricsNamespace
		if namespace == "" {
			namespace = "flora"
		}
		m = metrics.New(opts.Registry, namespace)
	}
	var pub service.Publisher
	if opts.Hub != nil {
		pub = opts.Hub
	}

	db := opts.DB
	productRepo := repository.NewProductRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	alerts := service.NewAlertService(alertRepo, productRepo, opts.Clock, opts.Log, m, pub)
	svc := Services{
		Auth:     service.NewAuthService(userRepo, opts.Tokens, opts.Clock, opts.Log),
		Users:    service.NewUserService(userRepo, privilegeRepo, roleRepo, opts.Log),
		Catalog:  service.NewCatalogService(db, productRepo, movementRepo, alerts, opts.Clock, opts.Log, pub),
		Customer: service.NewCustomerService(customerRepo, opts.Clock, opts.Log),
		Alerts:   alerts,
		Orders: service.NewOrderService(db, orderRepo, customerRepo, productRepo, paymentRepo,
			alerts, opts.Clock, opts.Location, opts.Log, m, pub),
		Payments: service.NewPaymentService(paymentRepo, opts.Clock, opts.Log, m, pub),
		Reports: service.NewReportService(reportRepo, orderRepo, customerRepo, productRepo, paymentRepo,
			alertRepo, movementRepo, opts.Clock, opts.Location),
		Admin: service.NewAdminService(db, opts.Log, pub),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Flower Shop Admin v1.0",
		ErrorHandler: handler.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: opts.Log.Writer()}))
	}
	if m != nil {
		app.Use(middleware.Metrics(m))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	router.Register(app, router.Handlers{
		Auth:      handler.NewAuthHandler(svc.Auth),
		Inventory: handler.NewInventoryHandler(svc.Catalog),
		Customer:  handler.NewCustomerHandler(svc.Customer),
		Order:     handler.NewOrderHandler(svc.Orders),
		Payment:   handler.NewPaymentHandler(svc.Payments),
		Alert:     handler.NewAlertHandler(svc.Alerts),
		Dashboard: handler.NewDashboardHandler(svc.Reports, opts.Clock, opts.Location),
		User:      handler.NewUserHandler(svc.Users),
		Admin:     handler.NewAdminHandler(svc.Admin),
	}, svc.Auth, opts.Hub)

	return &Server{App: app, Services: svc}
}
