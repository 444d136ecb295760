package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentGCash        PaymentMethod = "gcash"
	PaymentPayMaya      PaymentMethod = "paymaya"
	PaymentOther        PaymentMethod = "other"
)

var PaymentMethods = []PaymentMethod{
	PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer,
	PaymentGCash, PaymentPayMaya, PaymentOther,
}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Payment struct {
	BaseModel
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Order         *Order          `json:"order,omitempty"`
	PaymentNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"payment_number"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	TransactionID string          `gorm:"type:varchar(100)" json:"transaction_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	PaymentDate   time.Time       `gorm:"not null" json:"payment_date"`
}

// PaymentNumberPrefix is the PAY-YYYYMMDD part shared by one day's payments.
func PaymentNumberPrefix(day time.Time) string {
	return "PAY-" + day.Format("20060102")
}

func FormatPaymentNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%04d", PaymentNumberPrefix(day), seq)
}

type PaymentSummary struct {
	ID            uint            `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
}

func (p *Payment) Summary() PaymentSummary {
	return PaymentSummary{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		Amount:        p.Amount,
		Method:        p.PaymentMethod,
		Status:        p.PaymentStatus,
	}
}
