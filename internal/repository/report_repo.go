package repository

import (
	"context"
	"time"

	"go-flowershop-admin/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository holds the read-only aggregates behind the dashboard and
// the reports page.
type ReportRepository interface {
	CompletedSales(ctx context.Context, from *time.Time) (SalesBucket, error)
	CompletedOrdersBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
	PaymentMethodBreakdown(ctx context.Context) ([]PaymentMethodShare, error)
	TopSellers(ctx context.Context, limit int) ([]TopSeller, error)
	InventoryStats(ctx context.Context) (*InventoryStats, error)
}

// SalesBucket is the number and value of completed orders in a window.
type SalesBucket struct {
	Orders  int64           `json:"total_orders"`
	Revenue decimal.Decimal `json:"total_revenue"`
}

type PaymentMethodShare struct {
	Method model.PaymentMethod `json:"payment_method"`
	Total  decimal.Decimal     `json:"total"`
	Count  int64               `json:"count"`
}

type TopSeller struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type InventoryStats struct {
	TotalProducts   int64 `json:"total_products"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

// CompletedSales sums completed orders created at or after from; nil means
// all time.
func (r *reportRepo) CompletedSales(ctx context.Context, from *time.Time) (SalesBucket, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COUNT(*), SUM(total)").
		Where("status = ?", model.OrderCompleted)
	if from != nil {
		query = query.Where("created_at >= ?", from.UTC())
	}

	var (
		bucket  SalesBucket
		revenue decimal.NullDecimal
	)
	if err := query.Row().Scan(&bucket.Orders, &revenue); err != nil {
		return SalesBucket{}, err
	}
	bucket.Revenue = decimal.Zero
	if revenue.Valid {
		bucket.Revenue = revenue.Decimal
	}
	return bucket, nil
}

func (r *reportRepo) CompletedOrdersBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ? AND created_at >= ? AND created_at < ?", model.OrderCompleted, from.UTC(), to.UTC()).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *reportRepo) PaymentMethodBreakdown(ctx context.Context) ([]PaymentMethodShare, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("payment_method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("payment_status = ?", model.PaymentCompleted).
		Group("payment_method").
		Order("total DESC, payment_method ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []PaymentMethodShare{}
	for rows.Next() {
		var share PaymentMethodShare
		if err := rows.Scan(&share.Method, &share.Total, &share.Count); err != nil {
			return nil, err
		}
		results = append(results, share)
	}
	return results, rows.Err()
}

// TopSellers ranks products by quantity sold; ties go to the product that
// was sold first.
func (r *reportRepo) TopSellers(ctx context.Context, limit int) ([]TopSeller, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Select("product_id, product_name, SUM(quantity) AS total_quantity, COALESCE(SUM(quantity * unit_price), 0) AS total_revenue").
		Group("product_id, product_name").
		Order("total_quantity DESC, MIN(id) ASC").
		Limit(limit).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []TopSeller{}
	for rows.Next() {
		var seller TopSeller
		if err := rows.Scan(&seller.ProductID, &seller.ProductName, &seller.TotalQuantity, &seller.TotalRevenue); err != nil {
			return nil, err
		}
		results = append(results, seller)
	}
	return results, rows.Err()
}

func (r *reportRepo) InventoryStats(ctx context.Context) (*InventoryStats, error) {
	var stats InventoryStats
	active := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)
	}

	if err := active().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := active().Select("COALESCE(SUM(stock_quantity), 0)").Row().Scan(&stats.TotalStock); err != nil {
		return nil, err
	}
	if err := active().Where("stock_quantity > 0 AND stock_quantity <= low_stock_threshold").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := active().Where("stock_quantity = 0").Count(&stats.OutOfStockCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
