package models

import (
	"context"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"gorm.io/gorm"
)

// AuditLog is append-only. Retrieval order is strictly by identifier
// descending, not by timestamp.
type AuditLog struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserName  string    `gorm:"size:100;not null" json:"user"`
	Action    string    `gorm:"type:text;not null" json:"action"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// CreateAuditLog appends an entry inside the caller's transaction so the
// trail commits or rolls back with the action it records.
func CreateAuditLog(tx *gorm.DB, userName string, action string) error {
	entry := AuditLog{
		UserName: userName,
		Action:   action,
	}
	return tx.Create(&entry).Error
}

func GetAllAuditLogs(ctx context.Context) ([]*AuditLog, error) {
	db := config.GetDB()
	var results []*AuditLog

	if err := db.WithContext(ctx).Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
