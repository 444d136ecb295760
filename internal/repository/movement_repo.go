package repository

import (
	"context"
	"time"

	"go-flowershop-admin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovementRepository interface {
	WithTx(tx *gorm.DB) MovementRepository
	Create(ctx context.Context, movement *model.StockMovement) error
	Between(ctx context.Context, from, to time.Time) ([]model.StockMovement, error)
	ForProduct(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) WithTx(tx *gorm.DB) MovementRepository {
	return &movementRepo{tx}
}

func (r *movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(movement).Error
}

// Between returns movements with from <= created_at < to, oldest first.
func (r *movementRepo) Between(ctx context.Context, from, to time.Time) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC, id ASC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) ForProduct(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var movements []model.StockMovement
	err := query.Find(&movements).Error
	return movements, err
}
