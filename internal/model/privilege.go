package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivCustomerView   = "customer:view"
	PrivCustomerCreate = "customer:create"
	PrivProductView    = "product:view"
	PrivProductCreate  = "product:create"
	PrivProductUpdate  = "product:update"
	PrivProductDelete  = "product:delete"
	PrivOrderView      = "order:view"
	PrivOrderCreate    = "order:create"
	PrivOrderUpdate    = "order:update"
	PrivPaymentView    = "payment:view"
	PrivPaymentUpdate  = "payment:update"
	PrivAlertView      = "alert:view"
	PrivAlertUpdate    = "alert:update"
	PrivReportView     = "report:view"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivCustomerView, Name: "View Customer"},
	{Code: PrivCustomerCreate, Name: "Create Customer"},
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivOrderView, Name: "View Order"},
	{Code: PrivOrderCreate, Name: "Create Order"},
	{Code: PrivOrderUpdate, Name: "Update Order"},
	{Code: PrivPaymentView, Name: "View Payment"},
	{Code: PrivPaymentUpdate, Name: "Update Payment"},
	{Code: PrivAlertView, Name: "View Stock Alert"},
	{Code: PrivAlertUpdate, Name: "Resolve Stock Alert"},
	{Code: PrivReportView, Name: "View Reports"},
}
