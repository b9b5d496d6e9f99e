package reports

import (
	"context"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/shopspring/decimal"
)

type monthlyNet struct {
	Month string          `gorm:"column:month"`
	Net   decimal.Decimal `gorm:"column:net"`
}

type CashFlowMonth struct {
	Month     string           `json:"month"`
	Actual    *decimal.Decimal `json:"actual"`
	Projected decimal.Decimal  `json:"projected"`
}

// GetCashFlowForecast aggregates net cash (credits minus debits) per
// calendar month from the transactions table and appends one projected
// month. 'Actual' is null only on the forecast row.
func GetCashFlowForecast(ctx context.Context) ([]*CashFlowMonth, error) {
	sql := `
SELECT
    DATE_FORMAT(date, '%Y-%m') AS month,
    SUM(CASE WHEN type = 'Credit' THEN amount ELSE -amount END) AS net
FROM
    transactions
GROUP BY
    month
ORDER BY
    month
`

	var rows []*monthlyNet
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return projectCashFlow(rows), nil
}

// projectCashFlow turns monthly actuals into the dashboard series: each
// month carries its actual plus a projection (trailing three-month mean of
// the preceding actuals), and one extra forecast-only month is appended.
func projectCashFlow(rows []*monthlyNet) []*CashFlowMonth {
	out := make([]*CashFlowMonth, 0, len(rows)+1)
	for i, r := range rows {
		actual := r.Net
		out = append(out, &CashFlowMonth{
			Month:     monthLabel(r.Month),
			Actual:    &actual,
			Projected: trailingMean(rows, i),
		})
	}

	if len(rows) > 0 {
		last, err := time.Parse("2006-01", rows[len(rows)-1].Month)
		if err == nil {
			next := last.AddDate(0, 1, 0)
			out = append(out, &CashFlowMonth{
				Month:     next.Format("Jan") + " (Forecast)",
				Actual:    nil,
				Projected: trailingMean(rows, len(rows)),
			})
		}
	}

	return out
}

func monthLabel(yyyymm string) string {
	ts, err := time.Parse("2006-01", yyyymm)
	if err != nil {
		return yyyymm
	}
	return ts.Format("Jan")
}

// trailingMean averages up to three actuals strictly before index i. The
// first month has no history and falls back to its own actual.
func trailingMean(rows []*monthlyNet, i int) decimal.Decimal {
	start := i - 3
	if start < 0 {
		start = 0
	}
	window := rows[start:i]
	if len(window) == 0 {
		if len(rows) == 0 {
			return decimal.Zero
		}
		return rows[0].Net
	}

	sum := decimal.Zero
	for _, r := range window {
		sum = sum.Add(r.Net)
	}
	return sum.Div(decimal.NewFromInt(int64(len(window)))).Round(2)
}
