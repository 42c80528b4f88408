// Package aggregation derives balances, category spend, budget utilization and
// monthly trends from snapshots of ledger records. Every function is pure.
package aggregation

import (
	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// Sign returns +1 for money entering the wallet and -1 for money leaving it.
// Income is always positive; transfers and requests count as received when their direction is incoming.
func Sign(r ledger.Record) int {
	if r.Category == shared.CategoryIncome {
		return 1
	}
	if r.Direction == shared.DirectionIncoming &&
		(r.Kind == shared.RecordKindTransfer || r.Kind == shared.RecordKindMoneyRequest) {
		return 1
	}
	return -1
}

// SignedAmount returns the amount with its derived sign applied
func SignedAmount(r ledger.Record) decimal.Decimal {
	if Sign(r) < 0 {
		return r.Amount.Neg()
	}
	return r.Amount
}

// settled reports whether a record moves the balance. Pending and failed records do not.
func settled(r ledger.Record) bool {
	return r.Status != shared.RecordStatusPending && r.Status != shared.RecordStatusFailed
}

// TotalBalance sums the signed amounts of settled records
func TotalBalance(records []ledger.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if !settled(r) {
			continue
		}
		total = total.Add(SignedAmount(r))
	}
	return total
}

// SpendByCategory sums the amounts of completed records in category
func SpendByCategory(records []ledger.Record, category shared.Category) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Category == category && r.Status == shared.RecordStatusCompleted {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// CategoryTotal is the completed spend of one category
type CategoryTotal struct {
	Category shared.Category      `json:"category"`
	Total    decimal.Decimal      `json:"total"`
	Style    shared.CategoryStyle `json:"style"`
}

// SpendBreakdown returns the non-zero completed spend per spend category, in display order.
// Income and money requests are not spend and are left out.
func SpendBreakdown(records []ledger.Record) []CategoryTotal {
	out := []CategoryTotal{}
	for _, c := range shared.Categories {
		if c == shared.CategoryIncome || c == shared.CategoryRequest {
			continue
		}
		total := SpendByCategory(records, c)
		if total.IsZero() {
			continue
		}
		out = append(out, CategoryTotal{Category: c, Total: total, Style: c.Style()})
	}
	return out
}
