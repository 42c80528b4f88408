package aggregation

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// Utilization thresholds, in percent
const (
	OverBudgetThreshold = 100
	NearLimitThreshold  = 75
)

// UtilizationStatus classifies how much of a budget is used
type UtilizationStatus string

const (
	StatusOverBudget UtilizationStatus = "OVER_BUDGET"
	StatusNearLimit  UtilizationStatus = "NEAR_LIMIT"
	StatusOnTrack    UtilizationStatus = "ON_TRACK"
)

// Utilization is a rounded percentage of a budget limit and its classification
type Utilization struct {
	Percent int64             `json:"percent"`
	Status  UtilizationStatus `json:"status"`
}

var hundred = decimal.NewFromInt(100)

// BudgetUtilization returns round(100*spent/limit), rounding halves away from zero.
// A non-positive limit or a negative spend is a ValidationError.
func BudgetUtilization(spent, limit decimal.Decimal) (Utilization, error) {
	if !limit.IsPositive() {
		return Utilization{}, ledger.ValidationError{Field: "limit", Message: "budget limit must be greater than zero"}
	}
	if spent.IsNegative() {
		return Utilization{}, ledger.ValidationError{Field: "spent", Message: "spent amount cannot be negative"}
	}

	percent := spent.Mul(hundred).Div(limit).Round(0).IntPart()
	return Utilization{Percent: percent, Status: classify(percent)}, nil
}

func classify(percent int64) UtilizationStatus {
	switch {
	case percent >= OverBudgetThreshold:
		return StatusOverBudget
	case percent >= NearLimitThreshold:
		return StatusNearLimit
	default:
		return StatusOnTrack
	}
}

// BudgetLine is one category row of a budget report
type BudgetLine struct {
	Category    shared.Category      `json:"category"`
	Spent       decimal.Decimal      `json:"spent"`
	Limit       decimal.Decimal      `json:"limit"`
	Remaining   decimal.Decimal      `json:"remaining"`
	Utilization Utilization          `json:"utilization"`
	Style       shared.CategoryStyle `json:"style"`
}

// BudgetReport is the month's spend measured against every configured limit
type BudgetReport struct {
	Month       time.Time       `json:"month"`
	Lines       []BudgetLine    `json:"lines"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	TotalLimit  decimal.Decimal `json:"total_limit"`
	Utilization Utilization     `json:"utilization"`
}

// BuildBudgetReport measures the completed spend of month's records against limits.
// Lines follow category display order; categories without a limit are skipped.
func BuildBudgetReport(records []ledger.Record, limits map[shared.Category]decimal.Decimal, month time.Time) (BudgetReport, error) {
	start := monthStart(month)
	end := start.AddDate(0, 1, 0)
	inMonth := slices.DeleteFunc(slices.Clone(records), func(r ledger.Record) bool {
		return r.CreatedAt.Before(start) || !r.CreatedAt.Before(end)
	})

	report := BudgetReport{
		Month:      start,
		Lines:      []BudgetLine{},
		TotalSpent: decimal.Zero,
		TotalLimit: decimal.Zero,
	}
	for _, c := range shared.Categories {
		limit, ok := limits[c]
		if !ok {
			continue
		}
		spent := SpendByCategory(inMonth, c)
		u, err := BudgetUtilization(spent, limit)
		if err != nil {
			return BudgetReport{}, err
		}
		report.Lines = append(report.Lines, BudgetLine{
			Category:    c,
			Spent:       spent,
			Limit:       limit,
			Remaining:   limit.Sub(spent),
			Utilization: u,
			Style:       c.Style(),
		})
		report.TotalSpent = report.TotalSpent.Add(spent)
		report.TotalLimit = report.TotalLimit.Add(limit)
	}

	if report.TotalLimit.IsPositive() {
		u, err := BudgetUtilization(report.TotalSpent, report.TotalLimit)
		if err != nil {
			return BudgetReport{}, err
		}
		report.Utilization = u
	} else {
		report.Utilization = Utilization{Status: StatusOnTrack}
	}
	return report, nil
}
