package models

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/buildsmart/erp_backend/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID        string          `gorm:"primaryKey;size:20" json:"id"`
	Vendor    string          `gorm:"size:255;not null" json:"vendor"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	DueDate   time.Time       `gorm:"not null" json:"due_date"`
	Status    InvoiceStatus   `gorm:"size:10;not null" json:"status"`
	ProjectId int             `gorm:"index;not null" json:"project_id"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	Vendor    string          `json:"vendor" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date" binding:"required"`
	ProjectId int             `json:"project_id" binding:"required"`
}

const invoiceNumberPrefix = "INV-"

// maxInvoiceNumberAttempts bounds the retry loop when a freshly drawn
// number collides with an existing invoice. With 9000 possible suffixes the
// odds of five straight collisions are negligible until the table is nearly
// full.
const maxInvoiceNumberAttempts = 5

// InvoiceNumberStrategy allocates candidate invoice identifiers. Collision
// handling is the caller's job: CreateInvoice retries on duplicate key, so a
// strategy only has to produce well-formed numbers.
type InvoiceNumberStrategy interface {
	Next() string
}

// RandomInvoiceNumber draws a uniform 4-digit suffix in [1000, 9999] behind
// the fixed INV- prefix. Random suffixes are not unique by construction;
// uniqueness comes from the primary key plus the retry loop.
type RandomInvoiceNumber struct{}

func (RandomInvoiceNumber) Next() string {
	return fmt.Sprintf("%s%d", invoiceNumberPrefix, 1000+rand.IntN(9000))
}

// invoiceNumbers is swappable so tests can inject a deterministic strategy.
var invoiceNumbers InvoiceNumberStrategy = RandomInvoiceNumber{}

// CreateInvoice assigns a system-generated identifier, fixes the initial
// status to Pending and inserts the invoice together with its audit entry.
// The referenced project must exist. On an identifier collision the insert
// is retried with a fresh number.
func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, utils.ValidationErrorf("amount must be greater than zero")
	}

	if err := utils.ValidateResourceId[Project](ctx, input.ProjectId); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", utils.ErrorRecordNotFound, input.ProjectId)
		}
		return nil, err
	}

	userName, _ := utils.GetUserNameFromContext(ctx)
	if userName == "" {
		// Fall back to the token's email claim; display names are not claims.
		userName, _ = utils.GetEmailFromContext(ctx)
	}

	db := config.GetDB()
	invoice := Invoice{
		Vendor:    input.Vendor,
		Amount:    input.Amount,
		DueDate:   input.DueDate,
		Status:    InvoiceStatusPending,
		ProjectId: input.ProjectId,
	}

	var err error
	for attempt := 0; attempt < maxInvoiceNumberAttempts; attempt++ {
		invoice.ID = invoiceNumbers.Next()
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}
			return CreateAuditLog(tx, userName, "Created Invoice "+invoice.ID)
		})
		if err == nil {
			return &invoice, nil
		}
		if !isDuplicateKeyError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a unique invoice number after %d attempts: %w", maxInvoiceNumberAttempts, err)
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// GetAllInvoices returns every invoice in stable storage order. The data set
// is small enough that pagination would be noise.
func GetAllInvoices(ctx context.Context) ([]*Invoice, error) {
	db := config.GetDB()
	var results []*Invoice

	if err := db.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
