package repository

import (
	"context"
	"strings"

	"go-flowershop-admin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.Order) error
	Save(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error)
	// MaxID is the highest order id ever persisted, 0 for an empty table.
	MaxID(ctx context.Context) (uint, error)
	CreateItem(ctx context.Context, item *model.OrderItem) error
	ItemsOf(ctx context.Context, orderID uint) ([]model.OrderItem, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	Recent(ctx context.Context, limit int) ([]model.Order, error)
	Count(ctx context.Context, status model.OrderStatus) (int64, error)
}

type OrderFilter struct {
	Search string
	Status model.OrderStatus
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepo) Save(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) MaxID(ctx context.Context) (uint, error) {
	var max uint
	err := r.db.WithContext(ctx).Model(&model.Order{}).Select("COALESCE(MAX(id), 0)").Scan(&max).Error
	return max, err
}

func (r *orderRepo) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *orderRepo) ItemsOf(ctx context.Context, orderID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Preload("Customer")

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := containsPattern(search)
		query = query.Where(
			`LOWER(orders.order_number) LIKE ? ESCAPE '\' OR LOWER(customers.first_name) LIKE ? ESCAPE '\' OR LOWER(customers.last_name) LIKE ? ESCAPE '\' OR LOWER(customers.email) LIKE ? ESCAPE '\'`,
			like, like, like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}

	var orders []model.Order
	err := query.Order("orders.created_at DESC, orders.id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Recent(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// Count counts orders, all of them when status is empty.
func (r *orderRepo) Count(ctx context.Context, status model.OrderStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}
