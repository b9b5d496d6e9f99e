package models

// Wire values match the client contract exactly ("On Hold", "Finance Manager"
// are two words on the wire).

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusOnHold    ProjectStatus = "On Hold"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusPending InvoiceStatus = "Pending"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "Credit"
	TransactionTypeDebit  TransactionType = "Debit"
)

type UserRole string

const (
	UserRoleAdmin          UserRole = "Admin"
	UserRoleFinanceManager UserRole = "Finance Manager"
	UserRoleProjectManager UserRole = "Project Manager"
)
