package service

import (
	"context"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"

	"github.com/shopspring/decimal"
)

const (
	dashboardRecentOrders = 5
	dashboardActiveAlerts = 10
	movementChartDays     = 7
	topSellersLimit       = 10
)

type ReportService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	SalesOverview(ctx context.Context) (*SalesOverview, error)
	Calendar(ctx context.Context, year int) (Calendar, error)
	PaymentMethods(ctx context.Context) ([]repository.PaymentMethodShare, error)
	TopSellers(ctx context.Context) ([]repository.TopSeller, error)
	InventorySummary(ctx context.Context) (*InventorySummary, error)
}

type Dashboard struct {
	TotalCustomers     int64              `json:"total_customers"`
	TotalProducts      int64              `json:"total_products"`
	TotalOrders        int64              `json:"total_orders"`
	TotalRevenue       decimal.Decimal    `json:"total_revenue"`
	Revenue7Days       decimal.Decimal    `json:"revenue_7_days"`
	Revenue30Days      decimal.Decimal    `json:"revenue_30_days"`
	PendingOrders      int64              `json:"pending_orders"`
	CompletedOrders    int64              `json:"completed_orders"`
	LowStockCount      int64              `json:"low_stock_count"`
	OutOfStockCount    int64              `json:"out_of_stock_count"`
	NewCustomersToday  int64              `json:"new_customers_today"`
	PendingPayments    int64              `json:"pending_payments"`
	RecentOrders       []model.Order      `json:"recent_orders"`
	ActiveAlerts       []model.StockAlert `json:"active_alerts"`
	StockMovementChart []MovementDay      `json:"stock_movement_chart"`
}

// MovementDay sums one local day of stock movements.
type MovementDay struct {
	Date     string `json:"date"`
	StockIn  int    `json:"stock_in"`
	StockOut int    `json:"stock_out"`
}

type SalesOverview struct {
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
	Today        repository.SalesBucket `json:"today"`
	Last7Days    repository.SalesBucket `json:"last_7_days"`
	Last30Days   repository.SalesBucket `json:"last_30_days"`
}

// Calendar maps month name to day of month to that day's completed orders.
type Calendar map[string]map[int]*CalendarDay

type CalendarDay struct {
	Total  decimal.Decimal `json:"total"`
	Orders []CalendarOrder `json:"orders"`
}

type CalendarOrder struct {
	ID           uint            `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
}

type InventorySummary struct {
	repository.InventoryStats
	Products []model.ProductResponse `json:"products"`
}

type reportService struct {
	reportRepo   repository.ReportRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	paymentRepo  repository.PaymentRepository
	alertRepo    repository.AlertRepository
	movementRepo repository.MovementRepository
	clock        clock.Clock
	loc          *time.Location
}

func NewReportService(
	reportRepo repository.ReportRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	alertRepo repository.AlertRepository,
	movementRepo repository.MovementRepository,
	clk clock.Clock,
	loc *time.Location,
) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		reportRepo:   reportRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		paymentRepo:  paymentRepo,
		alertRepo:    alertRepo,
		movementRepo: movementRepo,
		clock:        clk,
		loc:          loc,
	}
}

// startOfDay is local midnight of the day t falls on.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.clock.Now()
	today := startOfDay(now, s.loc)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	d := &Dashboard{}
	var err error
	fail := func(err error) (*Dashboard, error) {
		return nil, storeErr(err, "Dashboard", "loading")
	}

	if d.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return fail(err)
	}
	if d.TotalOrders, err = s.orderRepo.Count(ctx, ""); err != nil {
		return fail(err)
	}
	if d.PendingOrders, err = s.orderRepo.Count(ctx, model.OrderPending); err != nil {
		return fail(err)
	}
	if d.CompletedOrders, err = s.orderRepo.Count(ctx, model.OrderCompleted); err != nil {
		return fail(err)
	}
	if d.TotalRevenue, err = s.paymentRepo.SumAmount(ctx, model.PaymentCompleted, nil); err != nil {
		return fail(err)
	}
	if d.Revenue7Days, err = s.paymentRepo.SumAmount(ctx, model.PaymentCompleted, &weekAgo); err != nil {
		return fail(err)
	}
	if d.Revenue30Days, err = s.paymentRepo.SumAmount(ctx, model.PaymentCompleted, &monthAgo); err != nil {
		return fail(err)
	}
	if d.PendingPayments, err = s.paymentRepo.Count(ctx, model.PaymentPending); err != nil {
		return fail(err)
	}
	if d.NewCustomersToday, err = s.customerRepo.CountCreatedSince(ctx, today); err != nil {
		return fail(err)
	}

	stats, err := s.reportRepo.InventoryStats(ctx)
	if err != nil {
		return fail(err)
	}
	d.TotalProducts = stats.TotalProducts
	d.LowStockCount = stats.LowStockCount
	d.OutOfStockCount = stats.OutOfStockCount

	if d.RecentOrders, err = s.orderRepo.Recent(ctx, dashboardRecentOrders); err != nil {
		return fail(err)
	}
	if d.ActiveAlerts, err = s.alertRepo.List(ctx, model.AlertActive, dashboardActiveAlerts); err != nil {
		return fail(err)
	}
	if d.StockMovementChart, err = s.movementChart(ctx, today); err != nil {
		return fail(err)
	}
	return d, nil
}

// movementChart buckets the last week of stock movements by local day,
// oldest day first. Days without movements are present with zeros.
func (s *reportService) movementChart(ctx context.Context, today time.Time) ([]MovementDay, error) {
	from := today.AddDate(0, 0, -(movementChartDays - 1))
	to := today.AddDate(0, 0, 1)

	movements, err := s.movementRepo.Between(ctx, from, to)
	if err != nil {
		return nil, err
	}

	chart := make([]MovementDay, movementChartDays)
	index := make(map[string]int, movementChartDays)
	for i := range chart {
		day := from.AddDate(0, 0, i).Format(deliveryDateLayout)
		chart[i].Date = day
		index[day] = i
	}
	for _, m := range movements {
		i, ok := index[m.CreatedAt.In(s.loc).Format(deliveryDateLayout)]
		if !ok {
			continue
		}
		if m.Delta > 0 {
			chart[i].StockIn += m.Delta
		} else {
			chart[i].StockOut -= m.Delta
		}
	}
	return chart, nil
}

func (s *reportService) SalesOverview(ctx context.Context) (*SalesOverview, error) {
	today := startOfDay(s.clock.Now(), s.loc)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	all, err := s.reportRepo.CompletedSales(ctx, nil)
	if err != nil {
		return nil, storeErr(err, "Sales report", "loading")
	}
	overview := &SalesOverview{TotalRevenue: all.Revenue}
	for _, w := range []struct {
		from   time.Time
		bucket *repository.SalesBucket
	}{
		{today, &overview.Today},
		{weekAgo, &overview.Last7Days},
		{monthAgo, &overview.Last30Days},
	} {
		from := w.from
		if *w.bucket, err = s.reportRepo.CompletedSales(ctx, &from); err != nil {
			return nil, storeErr(err, "Sales report", "loading")
		}
	}
	return overview, nil
}

// Calendar groups a year's completed orders by their local calendar day.
// Every month is present, empty or not.
func (s *reportService) Calendar(ctx context.Context, year int) (Calendar, error) {
	if year < 1 || year > 9999 {
		return nil, apperr.InvalidField("year", "must be between 1 and 9999")
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(1, 0, 0)

	orders, err := s.reportRepo.CompletedOrdersBetween(ctx, from, to)
	if err != nil {
		return nil, storeErr(err, "Sales calendar", "loading")
	}

	cal := make(Calendar, 12)
	for m := time.January; m <= time.December; m++ {
		cal[m.String()] = map[int]*CalendarDay{}
	}
	for _, o := range orders {
		local := o.CreatedAt.In(s.loc)
		days := cal[local.Month().String()]
		day, ok := days[local.Day()]
		if !ok {
			day = &CalendarDay{Total: decimal.Zero, Orders: []CalendarOrder{}}
			days[local.Day()] = day
		}
		entry := CalendarOrder{ID: o.ID, OrderNumber: o.OrderNumber, Total: o.Total}
		if o.Customer != nil {
			entry.CustomerName = o.Customer.FullName()
		}
		day.Total = day.Total.Add(o.Total)
		day.Orders = append(day.Orders, entry)
	}
	return cal, nil
}

func (s *reportService) PaymentMethods(ctx context.Context) ([]repository.PaymentMethodShare, error) {
	shares, err := s.reportRepo.PaymentMethodBreakdown(ctx)
	if err != nil {
		return nil, storeErr(err, "Payment report", "loading")
	}
	return shares, nil
}

func (s *reportService) TopSellers(ctx context.Context) ([]repository.TopSeller, error) {
	sellers, err := s.reportRepo.TopSellers(ctx, topSellersLimit)
	if err != nil {
		return nil, storeErr(err, "Top sellers report", "loading")
	}
	return sellers, nil
}

func (s *reportService) InventorySummary(ctx context.Context) (*InventorySummary, error) {
	stats, err := s.reportRepo.InventoryStats(ctx)
	if err != nil {
		return nil, storeErr(err, "Inventory report", "loading")
	}
	products, err := s.productRepo.ListInventory(ctx, repository.InventoryFilter{})
	if err != nil {
		return nil, storeErr(err, "Inventory report", "loading")
	}
	return &InventorySummary{InventoryStats: *stats, Products: model.ProductResponses(products)}, nil
}
