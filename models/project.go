package models

import (
	"context"
	"fmt"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/shopspring/decimal"
)

type Project struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Budget    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"budget"`
	Spent     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"spent"`
	Progress  int             `gorm:"not null;default:0" json:"progress"`
	Status    ProjectStatus   `gorm:"size:20;not null" json:"status"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Derived on every read, never stored.
	RiskScore int       `gorm:"-" json:"risk_score"`
	RiskLevel RiskLevel `gorm:"-" json:"risk_level"`
}

// GetAllProjects lists projects with their risk fields recomputed. A project
// whose stored budget fails the scoring precondition poisons the whole read:
// surfacing the bad row beats serving it unscored.
func GetAllProjects(ctx context.Context) ([]*Project, error) {
	db := config.GetDB()
	var results []*Project

	if err := db.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}

	for _, p := range results {
		score, level, err := ScoreProject(p.Budget, p.Spent, p.Progress)
		if err != nil {
			return nil, fmt.Errorf("project %d: %w", p.ID, err)
		}
		p.RiskScore = score
		p.RiskLevel = level
	}

	return results, nil
}
