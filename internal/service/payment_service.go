package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/metrics"
	"go-flowershop-admin/pkg/validator"

	"github.com/shopspring/decimal"
)

type PaymentService interface {
	UpdatePayment(ctx context.Context, id uint, req UpdatePaymentRequest, actor Actor) (*model.Payment, error)
	GetPayment(ctx context.Context, id uint) (*model.Payment, error)
	ListPayments(ctx context.Context, filter repository.PaymentFilter) (*PaymentsView, error)
}

// UpdatePaymentRequest is a partial update; omitted fields stay as they are.
type UpdatePaymentRequest struct {
	PaymentStatus *model.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending completed failed refunded"`
	PaymentMethod *model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash credit_card debit_card bank_transfer gcash paymaya other"`
	TransactionID *string              `json:"transaction_id"`
	Notes         *string              `json:"notes"`
}

type PaymentsView struct {
	Payments       []model.Payment `json:"payments"`
	TotalCompleted decimal.Decimal `json:"total_completed"`
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	clock       clock.Clock
	log         *logger.Logger
	metrics     *metrics.Metrics
	pub         Publisher
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	clk clock.Clock,
	log *logger.Logger,
	m *metrics.Metrics,
	pub Publisher,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		clock:       clk,
		log:         log,
		metrics:     m,
		pub:         publisherOrNop(pub),
	}
}

// nextPaymentNumber continues the day's PAY-YYYYMMDD-#### sequence.
func nextPaymentNumber(ctx context.Context, repo repository.PaymentRepository, day time.Time) (string, error) {
	prefix := model.PaymentNumberPrefix(day)
	last, err := repo.LastNumberWithPrefix(ctx, prefix+"-")
	if err != nil {
		return "", err
	}
	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix+"-"))
		if err != nil {
			return "", fmt.Errorf("malformed payment number %q: %w", last, err)
		}
		seq = n + 1
	}
	return model.FormatPaymentNumber(day, seq), nil
}

func (s *paymentService) UpdatePayment(ctx context.Context, id uint, req UpdatePaymentRequest, actor Actor) (*model.Payment, error) {
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Payment", "loading")
	}

	if req.PaymentStatus != nil {
		payment.PaymentStatus = *req.PaymentStatus
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = *req.PaymentMethod
	}
	if req.TransactionID != nil {
		payment.TransactionID = strings.TrimSpace(*req.TransactionID)
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	payment.UpdatedAt = s.clock.Now()

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, storeErr(err, "Payment", "updating")
	}

	s.metrics.IncPaymentUpdated(string(payment.PaymentStatus))
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"payment_number": payment.PaymentNumber,
		"status":         payment.PaymentStatus,
	}), "payment updated")
	s.pub.Publish(ws.Event{
		Type:    ws.TypePayment,
		Action:  "payment_updated",
		Data:    payment.Summary(),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("Payment %s updated successfully!", payment.PaymentNumber),
	})
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id uint) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Payment", "loading")
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter repository.PaymentFilter) (*PaymentsView, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.InvalidField("status", "unknown payment status")
	}
	if filter.Method != "" && !filter.Method.Valid() {
		return nil, apperr.InvalidField("method", "unknown payment method")
	}
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "Payment", "loading")
	}
	total, err := s.paymentRepo.SumAmount(ctx, model.PaymentCompleted, nil)
	if err != nil {
		return nil, storeErr(err, "Payment", "loading")
	}
	return &PaymentsView{Payments: payments, TotalCompleted: total}, nil
}
