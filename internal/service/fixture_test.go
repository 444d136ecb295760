package service

import (
	"sync"
	"testing"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/testutil"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	db    *gorm.DB
	clock *clock.Fixed
	loc   *time.Location
	pub   *recordingPublisher

	catalog   CatalogService
	customers CustomerService
	alerts    AlertService
	orders    OrderService
	payments  PaymentService
	reports   ReportService
	admin     AdminService
}

var staff = Actor{ID: "b7f1c2de-0000-4000-8000-000000000001", Name: "Maria Santos", Email: "maria@flora.test"}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clk := clock.NewFixed(testutil.Now)
	loc := testutil.Manila(t)
	log := logger.Nop()
	pub := &recordingPublisher{}

	productRepo := repository.NewProductRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	movementRepo := repository.NewMovementRepo(db)

	alerts := NewAlertService(alertRepo, productRepo, clk, log, nil, pub)
	return &fixture{
		db:        db,
		clock:     clk,
		loc:       loc,
		pub:       pub,
		catalog:   NewCatalogService(db, productRepo, movementRepo, alerts, clk, log, pub),
		customers: NewCustomerService(customerRepo, clk, log),
		alerts:    alerts,
		orders: NewOrderService(db, orderRepo, customerRepo, productRepo, paymentRepo,
			alerts, clk, loc, log, nil, pub),
		payments: NewPaymentService(paymentRepo, clk, log, nil, pub),
		reports: NewReportService(repository.NewReportRepo(db), orderRepo, customerRepo, productRepo,
			paymentRepo, alertRepo, movementRepo, clk, loc),
		admin: NewAdminService(db, log, pub),
	}
}

func (f *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *fixture) reloadProduct(t *testing.T, id uint) *model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return &p
}

func requireCode(t *testing.T, err error, code apperr.Code) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNilf(t, appErr, "expected coded error, got %v", err)
	require.Equal(t, code, appErr.Code(), appErr.Message())
	return appErr
}

func orderRequest(email string, items ...OrderItemRequest) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerEmail:     email,
		CustomerFirstName: "Ana",
		CustomerLastName:  "Reyes",
		CustomerPhone:     "09171234567",
		CustomerAddress:   "12 Mabini St, Quezon City",
		Items:             items,
	}
}
