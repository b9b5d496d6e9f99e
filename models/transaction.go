package models

import (
	"context"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/shopspring/decimal"
)

// Transaction is a flat ledger fact: a labelled credit or debit. There is no
// double-entry bookkeeping here, no running balance and no reconciliation;
// rows are immutable once written.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:20" json:"id"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Type        TransactionType `gorm:"size:10;not null" json:"type"`
	Category    string          `gorm:"size:100" json:"category"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetAllTransactions(ctx context.Context) ([]*Transaction, error) {
	db := config.GetDB()
	var results []*Transaction

	if err := db.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
