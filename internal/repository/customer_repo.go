package repository

import (
	"context"
	"strings"
	"time"

	"go-flowershop-admin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	WithTx(tx *gorm.DB) CustomerRepository
	Create(ctx context.Context, customer *model.Customer) error
	// InsertIfAbsent inserts unless the email is already taken and reports
	// whether a row was written.
	InsertIfAbsent(ctx context.Context, customer *model.Customer) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	List(ctx context.Context, search string) ([]CustomerListItem, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// CustomerListItem is a customer row with its number of orders.
type CustomerListItem struct {
	model.Customer
	OrderCount int64 `json:"order_count"`
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepo{tx}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepo) InsertIfAbsent(ctx context.Context, customer *model.Customer) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(customer)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *customerRepo) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) List(ctx context.Context, search string) ([]CustomerListItem, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Select("customers.*, (SELECT COUNT(*) FROM orders WHERE orders.customer_id = customers.id) AS order_count")

	if search = strings.TrimSpace(search); search != "" {
		like := containsPattern(search)
		query = query.Where(
			`LOWER(customers.first_name) LIKE ? ESCAPE '\' OR LOWER(customers.last_name) LIKE ? ESCAPE '\' OR LOWER(customers.email) LIKE ? ESCAPE '\' OR customers.phone LIKE ? ESCAPE '\'`,
			like, like, like, like,
		)
	}

	var items []CustomerListItem
	err := query.Order("customers.created_at DESC, customers.id DESC").Scan(&items).Error
	return items, err
}

func (r *customerRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&n).Error
	return n, err
}

func (r *customerRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Where("created_at >= ?", since.UTC()).Count(&n).Error
	return n, err
}
