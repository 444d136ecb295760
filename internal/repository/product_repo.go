package repository

import (
	"context"
	"strings"

	"go-flowershop-admin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	Save(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	// FindByIDForUpdate row-locks the product for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindActiveByName(ctx context.Context, name string) (*model.Product, error)
	FindActive(ctx context.Context) ([]model.Product, error)
	ListInventory(ctx context.Context, filter InventoryFilter) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

// InventoryFilter narrows the inventory list. Stock is "", "low" or "out".
type InventoryFilter struct {
	Search   string
	Category string
	Stock    string
}

const (
	StockFilterLow = "low"
	StockFilterOut = "out"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) Save(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByName matches the whole name, ignoring case. The oldest product
// wins when several share a name.
func (r *productRepo) FindActiveByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ? AND is_active = ?", strings.ToLower(name), true).
		Order("id ASC").
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC, id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) ListInventory(ctx context.Context, filter InventoryFilter) ([]model.Product, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("sku NOT LIKE ?", model.SyntheticSKUPrefix+"%")

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := containsPattern(search)
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\'`, like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	switch filter.Stock {
	case StockFilterLow:
		query = query.Where("stock_quantity > 0 AND stock_quantity <= low_stock_threshold")
	case StockFilterOut:
		query = query.Where("stock_quantity = 0")
	}

	var products []model.Product
	err := query.Order("category ASC, name ASC, id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *productRepo) IsReferenced(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).Where("product_id = ?", id).Count(&n).Error
	return n > 0, err
}
