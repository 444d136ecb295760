package model

// Role groups the privileges handed to new staff accounts.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
)

var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Shop Owner",
		Description: "Every privilege, including product deletion",
	},
	{
		Code:        RoleStaff,
		Name:        "Shop Staff",
		Description: "Day-to-day order, customer and stock handling",
	},
}

// StaffPrivilege reports whether a privilege code is granted to the staff role.
func StaffPrivilege(code string) bool {
	return code != PrivProductDelete
}
