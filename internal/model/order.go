package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	OrderNumber     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	Customer        *Customer       `json:"customer,omitempty"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes           string          `gorm:"type:text" json:"notes"`
	DeliveryDate    *time.Time      `gorm:"type:date" json:"delivery_date"`
	CustomerPhone   string          `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerAddress string          `gorm:"type:text" json:"customer_address"`
	FulfilledBy     string          `gorm:"type:varchar(100)" json:"fulfilled_by"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	Tax             decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax"`
	Discount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"discount"`
	Total           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`

	Items    []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment   `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// FormatOrderNumber renders ORD-{seq:04d}-{YYYYMMDD}.
func FormatOrderNumber(seq uint, day time.Time) string {
	return fmt.Sprintf("ORD-%04d-%s", seq, day.Format("20060102"))
}

// ApplyTotals recomputes subtotal and total from items. It never touches
// tax or discount.
func (o *Order) ApplyTotals(items []OrderItem) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tax).Sub(o.Discount)
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	Product     *Product        `json:"product,omitempty"`
	Quantity    int             `gorm:"not null;check:chk_order_items_quantity,quantity >= 1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	ProductName string          `gorm:"type:varchar(200)" json:"product_name"`
	ProductSKU  string          `gorm:"column:product_sku;type:varchar(100)" json:"product_sku"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderSummary is the order part of the create-order result.
type OrderSummary struct {
	ID            uint            `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Status        OrderStatus     `json:"status"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o *Order) Summary(c *Customer) OrderSummary {
	return OrderSummary{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  c.FullName(),
		CustomerEmail: c.Email,
		Status:        o.Status,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}
