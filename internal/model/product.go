package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockInStock    StockStatus = "In Stock"
	StockLowStock   StockStatus = "Low Stock"
	StockOutOfStock StockStatus = "Out of Stock"
)

const (
	// SyntheticSKUPrefix marks products created by the order workflow for
	// line items that matched nothing in the catalog.
	SyntheticSKUPrefix = "CUSTOM-"
	// SyntheticStock is large enough that a synthesized product never
	// trips a stock alert.
	SyntheticStock = 9999

	DefaultLowStockThreshold = 10
	DefaultUnit              = "pcs"
	DefaultProductName       = "Custom Product"
)

// StockStatusFor is the one stock classification rule. The SQL filters in the
// repositories (stock_quantity = 0, stock_quantity <= low_stock_threshold)
// must stay in step with it.
func StockStatusFor(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity <= threshold:
		return StockLowStock
	default:
		return StockInStock
	}
}

type Product struct {
	BaseModel
	Name              string              `gorm:"type:varchar(200);not null" json:"name"`
	Description       string              `gorm:"type:text" json:"description"`
	SKU               string              `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Category          string              `gorm:"type:varchar(100);index" json:"category"`
	Price             decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"price"`
	CostPrice         decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"cost_price"`
	StockQuantity     int                 `gorm:"not null;check:chk_products_stock_quantity,stock_quantity >= 0" json:"stock_quantity"`
	LowStockThreshold int                 `gorm:"not null;check:chk_products_low_stock_threshold,low_stock_threshold >= 0" json:"low_stock_threshold"`
	Unit              string              `gorm:"type:varchar(50);not null" json:"unit"`
	IsActive          bool                `gorm:"not null" json:"is_active"`

	OrderItems []OrderItem     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Alerts     []StockAlert    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Movements  []StockMovement `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Product) StockStatus() StockStatus {
	return StockStatusFor(p.StockQuantity, p.LowStockThreshold)
}

func (p *Product) IsSynthetic() bool {
	return strings.HasPrefix(p.SKU, SyntheticSKUPrefix)
}

// ProductResponse is the JSON shape of a product, carrying the derived status.
type ProductResponse struct {
	ID                uint                `json:"id"`
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	SKU               string              `json:"sku"`
	Category          string              `json:"category"`
	Price             decimal.Decimal     `json:"price"`
	CostPrice         decimal.NullDecimal `json:"cost_price"`
	StockQuantity     int                 `json:"stock_quantity"`
	LowStockThreshold int                 `json:"low_stock_threshold"`
	Unit              string              `json:"unit"`
	IsActive          bool                `json:"is_active"`
	StockStatus       StockStatus         `json:"stock_status"`
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		SKU:               p.SKU,
		Category:          p.Category,
		Price:             p.Price,
		CostPrice:         p.CostPrice,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		Unit:              p.Unit,
		IsActive:          p.IsActive,
		StockStatus:       p.StockStatus(),
	}
}

func ProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = products[i].ToResponse()
	}
	return out
}
