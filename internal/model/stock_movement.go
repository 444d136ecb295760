package model

import "time"

type MovementReason string

const (
	MovementCreated     MovementReason = "created"
	MovementStockUpdate MovementReason = "stock_update"
	MovementEdit        MovementReason = "edit"
)

// StockMovement records every change to a product's stock quantity.
type StockMovement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Product   *Product       `json:"product,omitempty"`
	Reason    MovementReason `gorm:"type:varchar(20);not null" json:"reason"`
	OldStock  int            `gorm:"not null" json:"old_stock"`
	NewStock  int            `gorm:"not null" json:"new_stock"`
	Delta     int            `gorm:"not null" json:"delta"`
	CreatedBy string         `gorm:"type:varchar(150)" json:"created_by"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func NewStockMovement(productID uint, reason MovementReason, oldStock, newStock int, by string, at time.Time) *StockMovement {
	return &StockMovement{
		ProductID: productID,
		Reason:    reason,
		OldStock:  oldStock,
		NewStock:  newStock,
		Delta:     newStock - oldStock,
		CreatedBy: by,
		CreatedAt: at,
	}
}
