package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/database"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/metrics"
	"go-flowershop-admin/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxCreateAttempts bounds retries when a concurrent order took the same
// order or payment number.
const maxCreateAttempts = 3

const deliveryDateLayout = "2006-01-02"

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, actor Actor) (*CreateOrderResult, error)
	RecalculateTotals(ctx context.Context, id uint) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus, actor Actor) (*model.Order, error)
	UpdateFulfilledBy(ctx context.Context, id uint, fulfilledBy string, actor Actor) (*model.Order, error)
	EditOrder(ctx context.Context, id uint, req EditOrderRequest, actor Actor) (*model.Order, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)
}

type CreateOrderRequest struct {
	CustomerEmail     string              `json:"customer_email" validate:"required,email"`
	CustomerFirstName string              `json:"customer_first_name" validate:"required"`
	CustomerLastName  string              `json:"customer_last_name"`
	CustomerPhone     string              `json:"customer_phone" validate:"required"`
	CustomerAddress   string              `json:"customer_address" validate:"required"`
	Items             []OrderItemRequest  `json:"items" validate:"required,min=1,dive"`
	Tax               decimal.Decimal     `json:"tax" validate:"gte=0"`
	Discount          decimal.Decimal     `json:"discount" validate:"gte=0"`
	DeliveryDate      string              `json:"delivery_date"`
	Notes             string              `json:"notes"`
	FulfilledBy       string              `json:"fulfilled_by"`
	PaymentMethod     model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash credit_card debit_card bank_transfer gcash paymaya other"`
	PaymentStatus     model.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending completed failed refunded"`
}

// OrderItemRequest names a product by name first; ProductID is the fallback.
// When neither resolves, a custom product is made up on the spot.
type OrderItemRequest struct {
	ProductName string          `json:"product_name"`
	ProductID   *uint           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type CreateOrderResult struct {
	CustomerCreated bool                 `json:"customer_created"`
	Order           model.OrderSummary   `json:"order"`
	Payment         model.PaymentSummary `json:"payment"`
}

// EditOrderRequest is a partial update of an order's header fields.
type EditOrderRequest struct {
	Tax             *decimal.Decimal `json:"tax" validate:"omitempty,gte=0"`
	Discount        *decimal.Decimal `json:"discount" validate:"omitempty,gte=0"`
	Notes           *string          `json:"notes"`
	DeliveryDate    *string          `json:"delivery_date"`
	CustomerPhone   *string          `json:"customer_phone"`
	CustomerAddress *string          `json:"customer_address"`
}

type orderService struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	paymentRepo  repository.PaymentRepository
	alerts       AlertService
	clock        clock.Clock
	loc          *time.Location
	log          *logger.Logger
	metrics      *metrics.Metrics
	pub          Publisher
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	alerts AlertService,
	clk clock.Clock,
	loc *time.Location,
	log *logger.Logger,
	m *metrics.Metrics,
	pub Publisher,
) OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &orderService{
		db:           db,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		paymentRepo:  paymentRepo,
		alerts:       alerts,
		clock:        clk,
		loc:          loc,
		log:          log,
		metrics:      m,
		pub:          publisherOrNop(pub),
	}
}

// ParseDeliveryDate reads a YYYY-MM-DD date. Anything else yields nil.
func ParseDeliveryDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	day, err := time.ParseInLocation(deliveryDateLayout, value, time.UTC)
	if err != nil {
		return nil
	}
	return &day
}

func normalizeOrderRequest(req *CreateOrderRequest) {
	req.CustomerEmail = NormalizeEmail(req.CustomerEmail)
	req.CustomerFirstName = strings.TrimSpace(req.CustomerFirstName)
	req.CustomerLastName = strings.TrimSpace(req.CustomerLastName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerAddress = strings.TrimSpace(req.CustomerAddress)
	req.FulfilledBy = strings.TrimSpace(req.FulfilledBy)
	req.PaymentMethod = model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(req.PaymentMethod))))
	req.PaymentStatus = model.PaymentStatus(strings.ToLower(strings.TrimSpace(string(req.PaymentStatus))))
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentCash
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = model.PaymentPending
	}
	for i := range req.Items {
		req.Items[i].ProductName = strings.TrimSpace(req.Items[i].ProductName)
		if req.Items[i].Quantity < 1 {
			req.Items[i].Quantity = 1
		}
	}
}

// CreateOrder registers the customer if needed, then writes the order, its
// items and its first payment in one transaction. Nothing is written when
// validation fails.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest, actor Actor) (*CreateOrderResult, error) {
	normalizeOrderRequest(&req)
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	var (
		result *createdOrder
		err    error
	)
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		result, err = s.createOrderOnce(ctx, req, actor)
		if err == nil || !database.IsUniqueViolation(err) {
			break
		}
		s.log.Warn(s.log.WithField(ctx, "attempt", attempt), "order number taken concurrently, retrying")
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.CodeConflict, err, "Could not allocate a unique order number, please retry")
		}
		return nil, storeErr(err, "Order", "creating")
	}

	s.metrics.IncOrderCreated()
	if result.synthesized && s.alerts != nil {
		if _, err := s.alerts.CheckAndCreateAlerts(ctx); err != nil {
			s.log.Error(ctx, "stock alert scan failed", err)
		}
	}

	out := &CreateOrderResult{
		CustomerCreated: result.customerCreated,
		Order:           result.order.Summary(result.customer),
		Payment:         result.payment.Summary(),
	}
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"order_number":   out.Order.OrderNumber,
		"payment_number": out.Payment.PaymentNumber,
		"total":          out.Order.Total.StringFixed(2),
	}), "order created")
	s.pub.Publish(ws.Event{
		Type:    ws.TypeOrder,
		Action:  "order_created",
		Data:    out,
		User:    actor.eventUser(),
		Message: fmt.Sprintf("Order %s created successfully!", out.Order.OrderNumber),
	})
	return out, nil
}

type createdOrder struct {
	customer        *model.Customer
	customerCreated bool
	order           *model.Order
	payment         *model.Payment
	synthesized     bool
}

func (s *orderService) createOrderOnce(ctx context.Context, req CreateOrderRequest, actor Actor) (*createdOrder, error) {
	now := s.clock.Now()
	localDay := now.In(s.loc)
	out := &createdOrder{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customers := s.customerRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)
		payments := s.paymentRepo.WithTx(tx)

		customer, created, err := s.customerFor(ctx, customers, req, now)
		if err != nil {
			return err
		}
		out.customer, out.customerCreated = customer, created

		maxID, err := orders.MaxID(ctx)
		if err != nil {
			return err
		}
		order := &model.Order{
			OrderNumber:     model.FormatOrderNumber(maxID+1, localDay),
			CustomerID:      customer.ID,
			Status:          model.OrderPending,
			Notes:           req.Notes,
			DeliveryDate:    ParseDeliveryDate(req.DeliveryDate),
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			FulfilledBy:     req.FulfilledBy,
			Subtotal:        decimal.Zero,
			Tax:             req.Tax,
			Discount:        req.Discount,
			Total:           decimal.Zero,
		}
		order.CreatedAt, order.UpdatedAt = now, now
		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		for _, line := range req.Items {
			product, synthesized, err := s.resolveProduct(ctx, products, line, now)
			if err != nil {
				return err
			}
			out.synthesized = out.synthesized || synthesized

			unitPrice := line.UnitPrice
			if !unitPrice.IsPositive() {
				unitPrice = product.Price
			}
			item := &model.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				Quantity:    line.Quantity,
				UnitPrice:   unitPrice,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
			}
			if err := orders.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		if err := s.applyTotals(ctx, orders, order); err != nil {
			return err
		}

		number, err := nextPaymentNumber(ctx, payments, localDay)
		if err != nil {
			return err
		}
		payment := &model.Payment{
			OrderID:       order.ID,
			PaymentNumber: number,
			Amount:        order.Total,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: req.PaymentStatus,
			Notes:         fmt.Sprintf("Auto-generated payment for order %s", order.OrderNumber),
			PaymentDate:   now,
		}
		payment.CreatedAt, payment.UpdatedAt = now, now
		if err := payments.Create(ctx, payment); err != nil {
			return err
		}

		out.order, out.payment = order, payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// customerFor finds the customer by email or registers one. The insert
// ignores an email conflict so a concurrent registration is simply re-read.
func (s *orderService) customerFor(ctx context.Context, repo repository.CustomerRepository, req CreateOrderRequest, now time.Time) (*model.Customer, bool, error) {
	customer, err := repo.FindByEmail(ctx, req.CustomerEmail)
	if err == nil {
		return customer, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	customer = &model.Customer{
		FirstName: req.CustomerFirstName,
		LastName:  req.CustomerLastName,
		Email:     req.CustomerEmail,
		Phone:     req.CustomerPhone,
		Address:   req.CustomerAddress,
	}
	customer.CreatedAt, customer.UpdatedAt = now, now
	inserted, err := repo.InsertIfAbsent(ctx, customer)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		return customer, true, nil
	}
	customer, err = repo.FindByEmail(ctx, req.CustomerEmail)
	return customer, false, err
}

// resolveProduct looks the line up by active product name, then by id. A
// line matching neither gets a custom product with effectively unlimited
// stock.
func (s *orderService) resolveProduct(ctx context.Context, repo repository.ProductRepository, line OrderItemRequest, now time.Time) (*model.Product, bool, error) {
	if line.ProductName != "" {
		product, err := repo.FindActiveByName(ctx, line.ProductName)
		if err == nil {
			return product, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	if line.ProductID != nil {
		product, err := repo.FindByID(ctx, *line.ProductID)
		if err == nil {
			return product, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	name := line.ProductName
	if name == "" {
		name = model.DefaultProductName
	}
	price := decimal.Zero
	if line.UnitPrice.IsPositive() {
		price = line.UnitPrice
	}
	product := &model.Product{
		SKU:               SyntheticSKU(now),
		Name:              name,
		Price:             price,
		StockQuantity:     model.SyntheticStock,
		LowStockThreshold: 0,
		Unit:              model.DefaultUnit,
		IsActive:          true,
	}
	product.CreatedAt, product.UpdatedAt = now, now
	if err := repo.Create(ctx, product); err != nil {
		return nil, false, err
	}
	return product, true, nil
}

// SyntheticSKU returns CUSTOM-{unix}-{random}. The random part keeps two
// custom lines created in the same second apart.
func SyntheticSKU(now time.Time) string {
	return model.SyntheticSKUPrefix + strconv.FormatInt(now.Unix(), 10) + "-" + strings.ToUpper(uuid.NewString()[:6])
}

// applyTotals reloads the order's items and recomputes subtotal and total.
func (s *orderService) applyTotals(ctx context.Context, orders repository.OrderRepository, order *model.Order) error {
	items, err := orders.ItemsOf(ctx, order.ID)
	if err != nil {
		return err
	}
	order.ApplyTotals(items)
	if order.Total.IsNegative() {
		return apperr.InvalidField("discount", "discount exceeds subtotal plus tax")
	}
	order.UpdatedAt = s.clock.Now()
	return orders.Save(ctx, order)
}

func (s *orderService) RecalculateTotals(ctx context.Context, id uint) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return s.applyTotals(ctx, orders, order)
	})
	if err != nil {
		return nil, storeErr(err, "Order", "updating")
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus, actor Actor) (*model.Order, error) {
	status = model.OrderStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if status == "" {
		return nil, apperr.MissingField("status")
	}
	if !status.Valid() {
		return nil, apperr.InvalidField("status", "unknown order status "+string(status))
	}

	order, err := s.mutate(ctx, id, func(order *model.Order) error {
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"status":       order.Status,
	}), "order status updated")
	s.pub.Publish(ws.Event{
		Type:    ws.TypeOrder,
		Action:  "status_updated",
		Data:    map[string]any{"id": order.ID, "order_number": order.OrderNumber, "status": order.Status},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("Order %s status updated to %s", order.OrderNumber, order.Status),
	})
	return order, nil
}

func (s *orderService) UpdateFulfilledBy(ctx context.Context, id uint, fulfilledBy string, actor Actor) (*model.Order, error) {
	order, err := s.mutate(ctx, id, func(order *model.Order) error {
		order.FulfilledBy = strings.TrimSpace(fulfilledBy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ws.Event{
		Type:    ws.TypeOrder,
		Action:  "fulfilled_by_updated",
		Data:    map[string]any{"id": order.ID, "order_number": order.OrderNumber, "fulfilled_by": order.FulfilledBy},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("Order %s fulfilled by updated", order.OrderNumber),
	})
	return order, nil
}

// EditOrder changes header fields and re-derives the totals.
func (s *orderService) EditOrder(ctx context.Context, id uint, req EditOrderRequest, actor Actor) (*model.Order, error) {
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		existing, err := orders.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Tax != nil {
			existing.Tax = *req.Tax
		}
		if req.Discount != nil {
			existing.Discount = *req.Discount
		}
		if req.Notes != nil {
			existing.Notes = *req.Notes
		}
		if req.DeliveryDate != nil {
			existing.DeliveryDate = ParseDeliveryDate(*req.DeliveryDate)
		}
		if req.CustomerPhone != nil {
			existing.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
		}
		if req.CustomerAddress != nil {
			existing.CustomerAddress = strings.TrimSpace(*req.CustomerAddress)
		}
		if err := s.applyTotals(ctx, orders, existing); err != nil {
			return err
		}
		order = existing
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Order", "updating")
	}

	s.pub.Publish(ws.Event{
		Type:    ws.TypeOrder,
		Action:  "order_updated",
		Data:    map[string]any{"id": order.ID, "order_number": order.OrderNumber, "total": order.Total},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("Order %s updated", order.OrderNumber),
	})
	return s.GetOrder(ctx, order.ID)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order", "loading")
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.InvalidField("status", "unknown order status "+string(filter.Status))
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "Order", "loading")
	}
	return orders, nil
}

// mutate applies fn to a locked order and saves it.
func (s *orderService) mutate(ctx context.Context, id uint, fn func(order *model.Order) error) (*model.Order, error) {
	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		existing, err := orders.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(existing); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()
		if err := orders.Save(ctx, existing); err != nil {
			return err
		}
		order = existing
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Order", "updating")
	}
	return order, nil
}
