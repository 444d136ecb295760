package repository

import (
	"context"
	"strings"
	"time"

	"go-flowershop-admin/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	Create(ctx context.Context, payment *model.Payment) error
	Save(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uint) (*model.Payment, error)
	// LastNumberWithPrefix returns the greatest payment number starting
	// with prefix, or "" when there is none.
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error)
	SumAmount(ctx context.Context, status model.PaymentStatus, since *time.Time) (decimal.Decimal, error)
	Count(ctx context.Context, status model.PaymentStatus) (int64, error)
}

type PaymentFilter struct {
	Search string
	Status model.PaymentStatus
	Method model.PaymentMethod
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) WithTx(tx *gorm.DB) PaymentRepository {
	return &paymentRepo{tx}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
}

func (r *paymentRepo) Save(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, id uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Preload("Order.Customer").First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_number LIKE ?", prefix+"%").
		Order("payment_number DESC").
		Limit(1).
		Pluck("payment_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func (r *paymentRepo) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Preload("Order.Customer")

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := containsPattern(search)
		query = query.Where(
			`LOWER(payments.payment_number) LIKE ? ESCAPE '\' OR LOWER(orders.order_number) LIKE ? ESCAPE '\' OR LOWER(payments.transaction_id) LIKE ? ESCAPE '\'`,
			like, like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("payments.payment_status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("payments.payment_method = ?", filter.Method)
	}

	var payments []model.Payment
	err := query.Order("payments.created_at DESC, payments.id DESC").Find(&payments).Error
	return payments, err
}

// SumAmount totals payments in a status, optionally from a payment date on.
func (r *paymentRepo) SumAmount(ctx context.Context, status model.PaymentStatus, since *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{}).Where("payment_status = ?", status)
	if since != nil {
		query = query.Where("payment_date >= ?", since.UTC())
	}
	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *paymentRepo) Count(ctx context.Context, status model.PaymentStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{})
	if status != "" {
		query = query.Where("payment_status = ?", status)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}
