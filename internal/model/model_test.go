package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStockStatusFor(t *testing.T) {
	cases := []struct {
		qty, threshold int
		want           StockStatus
	}{
		{5, 10, StockLowStock},
		{0, 10, StockOutOfStock},
		{20, 10, StockInStock},
		{10, 10, StockLowStock},
		{1, 0, StockInStock},
		{0, 0, StockOutOfStock},
		{SyntheticStock, 0, StockInStock},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StockStatusFor(tc.qty, tc.threshold), "qty=%d threshold=%d", tc.qty, tc.threshold)
	}
}

func TestApplyTotals(t *testing.T) {
	order := &Order{Tax: decimal.RequireFromString("12.50"), Discount: decimal.RequireFromString("2.50")}
	order.ApplyTotals([]OrderItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("100.00")},
		{Quantity: 3, UnitPrice: decimal.RequireFromString("15.25")},
	})

	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("245.75")), order.Subtotal.String())
	assert.True(t, order.Total.Equal(decimal.RequireFromString("255.75")), order.Total.String())
}

func TestNumberFormats(t *testing.T) {
	day := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "ORD-0007-20261017", FormatOrderNumber(7, day))
	assert.Equal(t, "ORD-12345-20261017", FormatOrderNumber(12345, day))
	assert.Equal(t, "PAY-20261017-0042", FormatPaymentNumber(day, 42))
}

func TestAlertFor(t *testing.T) {
	kind, msg, ok := AlertFor(&Product{Name: "Red Rose", StockQuantity: 0, LowStockThreshold: 5, Unit: "pcs"})
	assert.True(t, ok)
	assert.Equal(t, AlertOutOfStock, kind)
	assert.Equal(t, "Red Rose is out of stock!", msg)

	kind, msg, ok = AlertFor(&Product{Name: "Tulip", StockQuantity: 3, LowStockThreshold: 5, Unit: "stems"})
	assert.True(t, ok)
	assert.Equal(t, AlertLowStock, kind)
	assert.Equal(t, "Tulip stock is low (3 stems remaining)", msg)

	_, _, ok = AlertFor(&Product{Name: "Lily", StockQuantity: 30, LowStockThreshold: 5})
	assert.False(t, ok)
}

func TestValidEnums(t *testing.T) {
	assert.True(t, OrderCancelled.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
	assert.True(t, PaymentGCash.Valid())
	assert.False(t, PaymentMethod("crypto").Valid())
	assert.True(t, PaymentRefunded.Valid())
	assert.False(t, PaymentStatus("void").Valid())
}

func TestSuperuserHasEveryPrivilege(t *testing.T) {
	u := &User{IsSuperuser: true}
	assert.True(t, u.HasPrivilege(PrivProductDelete))

	staff := &User{Privileges: []Privilege{{Code: PrivOrderCreate}}}
	assert.True(t, staff.HasPrivilege(PrivOrderCreate))
	assert.False(t, staff.HasPrivilege(PrivProductDelete))
}
