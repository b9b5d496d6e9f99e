package models

import (
	"github.com/buildsmart/erp_backend/utils"
	"github.com/shopspring/decimal"
)

// ScoreProject derives the risk score and level for a project from its
// budget, amount spent and completion percentage. It is a pure function:
// the derived values are never persisted, so they can never drift from the
// stored fields they depend on.
//
// The score adds two signals:
//   - relative overrun: spend% running ahead of progress% (+50 past a
//     15-point gap, +20 past a 5-point gap; only the first match applies)
//   - absolute exhaustion: spend% above 90 (+30, independent of the gap)
//
// Bands use strict comparisons, so a score of exactly 60/40/20 falls into
// the lower band.
//
// A non-positive budget is a validation error (never a NaN score); a
// progress value outside [0,100] is clamped.
func ScoreProject(budget, spent decimal.Decimal, progress int) (int, RiskLevel, error) {
	if !budget.IsPositive() {
		return 0, "", utils.ValidationErrorf("budget must be greater than zero")
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	spentPct := spent.Div(budget).Mul(decimal.NewFromInt(100))

	score := 0
	if spentPct.GreaterThan(decimal.NewFromInt(int64(progress + 15))) {
		score += 50
	} else if spentPct.GreaterThan(decimal.NewFromInt(int64(progress + 5))) {
		score += 20
	}
	if spentPct.GreaterThan(decimal.NewFromInt(90)) {
		score += 30
	}

	return score, classifyRiskScore(score), nil
}

func classifyRiskScore(score int) RiskLevel {
	switch {
	case score > 60:
		return RiskLevelCritical
	case score > 40:
		return RiskLevelHigh
	case score > 20:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}
