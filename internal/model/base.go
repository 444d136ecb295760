package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is shared by the business records (customers, products, orders,
// payments). Timestamps are always written in UTC by the services.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// AccountModel handles UUID ids and audit trails for staff accounts.
type AccountModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `gorm:"type:varchar(150)" json:"created_by"`
	UpdatedBy string `gorm:"type:varchar(150)" json:"updated_by"`
}

func (base *AccountModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// All lists every persisted model, in the order AutoMigrate should see them.
func All() []any {
	return []any{
		&Privilege{}, &Role{}, &User{},
		&Customer{}, &Product{}, &Order{}, &OrderItem{}, &Payment{},
		&StockAlert{}, &StockMovement{},
	}
}
