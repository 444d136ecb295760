package model

import (
	"fmt"
	"time"
)

type AlertType string

const (
	AlertLowStock   AlertType = "low_stock"
	AlertOutOfStock AlertType = "out_of_stock"
)

type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertResolved AlertStatus = "resolved"
	AlertIgnored  AlertStatus = "ignored"
)

func (s AlertStatus) Valid() bool {
	return s == AlertActive || s == AlertResolved || s == AlertIgnored
}

// StockAlert is at most one active row per product; the partial unique index
// backs the rule engine's own check.
type StockAlert struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	ProductID         uint        `gorm:"not null;index;uniqueIndex:uq_stock_alerts_active_product,where:alert_status = 'active'" json:"product_id"`
	Product           *Product    `json:"product,omitempty"`
	AlertType         AlertType   `gorm:"type:varchar(20);not null" json:"alert_type"`
	AlertStatus       AlertStatus `gorm:"type:varchar(20);not null;index" json:"alert_status"`
	StockLevelAtAlert int         `gorm:"not null" json:"stock_level_at_alert"`
	Message           string      `gorm:"type:varchar(255)" json:"message"`
	CreatedAt         time.Time   `gorm:"not null;index" json:"created_at"`
	ResolvedAt        *time.Time  `json:"resolved_at"`
}

// AlertFor returns the alert a product in the given state should carry, or
// false when it is in stock.
func AlertFor(p *Product) (AlertType, string, bool) {
	switch p.StockStatus() {
	case StockOutOfStock:
		return AlertOutOfStock, fmt.Sprintf("%s is out of stock!", p.Name), true
	case StockLowStock:
		return AlertLowStock, fmt.Sprintf("%s stock is low (%d %s remaining)", p.Name, p.StockQuantity, p.Unit), true
	default:
		return "", "", false
	}
}
