package aggregation

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// MonthlySpend is the outgoing completed spend of one calendar month
type MonthlySpend struct {
	Month      time.Time       `json:"month"`
	Label      string          `json:"label"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyTrend yields numMonths calendar months ending with now's month, oldest first.
// Each month carries the completed outgoing spend of records created in it; months with
// no spend yield zero. The sequence holds no cursor and can be ranged over repeatedly.
func MonthlyTrend(records []ledger.Record, numMonths int, now time.Time) iter.Seq[MonthlySpend] {
	return func(yield func(MonthlySpend) bool) {
		if numMonths <= 0 {
			return
		}
		first := monthStart(now).AddDate(0, -(numMonths - 1), 0)
		for i := 0; i < numMonths; i++ {
			start := first.AddDate(0, i, 0)
			end := start.AddDate(0, 1, 0)

			total := decimal.Zero
			for _, r := range records {
				if r.Status != shared.RecordStatusCompleted || Sign(r) > 0 {
					continue
				}
				at := r.CreatedAt.UTC()
				if at.Before(start) || !at.Before(end) {
					continue
				}
				total = total.Add(r.Amount)
			}

			if !yield(MonthlySpend{Month: start, Label: start.Format("Jan 2006"), TotalSpent: total}) {
				return
			}
		}
	}
}
