package model

import "strings"

type Customer struct {
	BaseModel
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Email     string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Phone     string `gorm:"type:varchar(20)" json:"phone"`
	Address   string `gorm:"type:text" json:"address"`
	City      string `gorm:"type:varchar(100)" json:"city"`
	State     string `gorm:"type:varchar(100)" json:"state"`
	ZipCode   string `gorm:"type:varchar(20)" json:"zip_code"`

	Orders []Order `gorm:"constraint:OnDelete:CASCADE" json:"orders,omitempty"`
}

// FullName is the display name used in order summaries and lists.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
