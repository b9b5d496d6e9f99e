// seed-demo loads the demo dataset: three users (shared password "password"),
// three projects, four invoices, three bank transactions and two audit
// entries. It is idempotent: if any users exist the seed is skipped.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/buildsmart/erp_backend/models"
	"github.com/buildsmart/erp_backend/utils"
	"github.com/shopspring/decimal"
)

const demoPassword = "password"

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	var userCount int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to count users: %v\n", err)
		os.Exit(1)
	}
	if userCount > 0 {
		fmt.Println("Users already present; skipping seed.")
		return
	}

	hashed, err := utils.HashPassword(demoPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hash := string(hashed)

	users := []models.User{
		{Name: "Alice Carter", Email: "alice@buildsmart.com", Password: hash, Role: models.UserRoleAdmin, Avatar: "https://picsum.photos/100/100?random=1"},
		{Name: "Bob Finance", Email: "bob@buildsmart.com", Password: hash, Role: models.UserRoleFinanceManager, Avatar: "https://picsum.photos/100/100?random=2"},
		{Name: "Charlie Site", Email: "charlie@buildsmart.com", Password: hash, Role: models.UserRoleProjectManager, Avatar: "https://picsum.photos/100/100?random=3"},
	}

	projects := []models.Project{
		{Name: "Skyline Tower Phase 1", Budget: decimal.NewFromInt(1500000), Spent: decimal.NewFromInt(1200000), Progress: 60, Status: models.ProjectStatusActive, StartDate: date(2023, 1, 15), EndDate: date(2024, 6, 30)},
		{Name: "Riverfront Bridge", Budget: decimal.NewFromInt(5000000), Spent: decimal.NewFromInt(1000000), Progress: 25, Status: models.ProjectStatusActive, StartDate: date(2023, 5, 1), EndDate: date(2025, 12, 1)},
		{Name: "Westside Mall Renovation", Budget: decimal.NewFromInt(750000), Spent: decimal.NewFromInt(740000), Progress: 85, Status: models.ProjectStatusActive, StartDate: date(2023, 8, 10), EndDate: date(2024, 2, 28)},
	}

	invoices := []models.Invoice{
		{ID: "INV-001", Vendor: "Steel Supplies Co.", Amount: decimal.NewFromInt(45000), DueDate: date(2023, 10, 25), Status: models.InvoiceStatusOverdue, ProjectId: 1},
		{ID: "INV-002", Vendor: "Concrete Mixers Ltd", Amount: decimal.NewFromInt(12000), DueDate: date(2023, 11, 5), Status: models.InvoiceStatusPending, ProjectId: 2},
		{ID: "INV-003", Vendor: "Safety Gear Inc.", Amount: decimal.NewFromInt(3500), DueDate: date(2023, 10, 15), Status: models.InvoiceStatusPaid, ProjectId: 3},
		{ID: "INV-004", Vendor: "Heavy Machinery Rentals", Amount: decimal.NewFromInt(25000), DueDate: date(2023, 11, 10), Status: models.InvoiceStatusPending, ProjectId: 1},
	}

	transactions := []models.Transaction{
		{ID: "TRX-991", Date: date(2023, 10, 20), Description: "Project Payment - Skyline", Amount: decimal.NewFromInt(50000), Type: models.TransactionTypeCredit, Category: "Revenue"},
		{ID: "TRX-992", Date: date(2023, 10, 21), Description: "Vendor Payout - Steel", Amount: decimal.NewFromInt(45000), Type: models.TransactionTypeDebit, Category: "COGS"},
		{ID: "TRX-993", Date: date(2023, 10, 22), Description: "Office Rent", Amount: decimal.NewFromInt(2000), Type: models.TransactionTypeDebit, Category: "OpEx"},
	}

	auditLogs := []models.AuditLog{
		{UserName: "Alice Carter", Action: "Approved Invoice INV-003"},
		{UserName: "Bob Finance", Action: "Updated Budget for Project 1"},
	}

	fmt.Println("Seeding database...")
	if err := db.WithContext(ctx).Create(&users).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed users: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Create(&projects).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed projects: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Create(&invoices).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed invoices: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Create(&transactions).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed transactions: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Create(&auditLogs).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed audit logs: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database seeded successfully.")
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
