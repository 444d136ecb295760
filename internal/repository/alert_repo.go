package repository

import (
	"context"

	"go-flowershop-admin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository interface {
	WithTx(tx *gorm.DB) AlertRepository
	Create(ctx context.Context, alert *model.StockAlert) error
	Save(ctx context.Context, alert *model.StockAlert) error
	FindByID(ctx context.Context, id uint) (*model.StockAlert, error)
	FindActiveByProduct(ctx context.Context, productID uint) (*model.StockAlert, error)
	// ActiveProductIDs returns the set of products that carry an active alert.
	ActiveProductIDs(ctx context.Context) (map[uint]struct{}, error)
	List(ctx context.Context, status model.AlertStatus, limit int) ([]model.StockAlert, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db}
}

func (r *alertRepo) WithTx(tx *gorm.DB) AlertRepository {
	return &alertRepo{tx}
}

func (r *alertRepo) Create(ctx context.Context, alert *model.StockAlert) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(alert).Error
}

func (r *alertRepo) Save(ctx context.Context, alert *model.StockAlert) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(alert).Error
}

func (r *alertRepo) FindByID(ctx context.Context, id uint) (*model.StockAlert, error) {
	var alert model.StockAlert
	if err := r.db.WithContext(ctx).Preload("Product").First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) FindActiveByProduct(ctx context.Context, productID uint) (*model.StockAlert, error) {
	var alert model.StockAlert
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND alert_status = ?", productID, model.AlertActive).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) ActiveProductIDs(ctx context.Context) (map[uint]struct{}, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.StockAlert{}).
		Where("alert_status = ?", model.AlertActive).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// List returns newest alerts first; empty status means any, limit <= 0 means all.
func (r *alertRepo) List(ctx context.Context, status model.AlertStatus, limit int) ([]model.StockAlert, error) {
	query := r.db.WithContext(ctx).Preload("Product")
	if status != "" {
		query = query.Where("alert_status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var alerts []model.StockAlert
	err := query.Order("created_at DESC, id DESC").Find(&alerts).Error
	return alerts, err
}
