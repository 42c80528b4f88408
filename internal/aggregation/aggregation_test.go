package aggregation

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rec(amount string, category shared.Category, at time.Time) ledger.Record {
	kind := shared.RecordKindTransfer
	if category == shared.CategoryBills {
		kind = shared.RecordKindBillPayment
	}
	return ledger.Record{
		ID:        "TXN_" + amount,
		Kind:      kind,
		Direction: shared.DirectionOutgoing,
		Amount:    dec(amount),
		Category:  category,
		Status:    shared.RecordStatusCompleted,
		CreatedAt: at,
	}
}

var jan15 = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestTotalBalance(t *testing.T) {
	t.Run("income minus spend", func(t *testing.T) {
		records := []ledger.Record{
			{Amount: dec("425000"), Category: shared.CategoryIncome},
			{Amount: dec("15420"), Category: shared.CategoryFood},
		}
		assert.Equal(t, "409580", TotalBalance(records).String())
	})

	t.Run("received transfer is positive", func(t *testing.T) {
		received := rec("5000", shared.CategoryTransfer, jan15)
		received.Direction = shared.DirectionIncoming
		sent := rec("2000", shared.CategoryTransfer, jan15)

		assert.Equal(t, "3000", TotalBalance([]ledger.Record{received, sent}).String())
	})

	t.Run("pending and failed records are ignored", func(t *testing.T) {
		pending := rec("2500", shared.CategoryRequest, jan15)
		pending.Kind = shared.RecordKindMoneyRequest
		pending.Direction = shared.DirectionIncoming
		pending.Status = shared.RecordStatusPending
		failed := rec("100", shared.CategoryFood, jan15)
		failed.Status = shared.RecordStatusFailed
		paid := rec("12000", shared.CategoryBills, jan15)

		assert.Equal(t, "-12000", TotalBalance([]ledger.Record{pending, failed, paid}).String())
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, TotalBalance(nil).IsZero())
	})

	t.Run("decimal amounts do not drift", func(t *testing.T) {
		records := []ledger.Record{
			{Amount: dec("0.10"), Category: shared.CategoryIncome},
			{Amount: dec("0.20"), Category: shared.CategoryIncome},
		}
		assert.True(t, dec("0.3").Equal(TotalBalance(records)))
	})
}

func TestSign(t *testing.T) {
	tests := []struct {
		name string
		r    ledger.Record
		want int
	}{
		{"income", ledger.Record{Category: shared.CategoryIncome, Direction: shared.DirectionOutgoing}, 1},
		{"received transfer", ledger.Record{Kind: shared.RecordKindTransfer, Category: shared.CategoryTransfer, Direction: shared.DirectionIncoming}, 1},
		{"sent transfer", ledger.Record{Kind: shared.RecordKindTransfer, Category: shared.CategoryTransfer, Direction: shared.DirectionOutgoing}, -1},
		{"bill", ledger.Record{Kind: shared.RecordKindBillPayment, Category: shared.CategoryBills, Direction: shared.DirectionOutgoing}, -1},
		{"incoming bill is still spend", ledger.Record{Kind: shared.RecordKindBillPayment, Category: shared.CategoryBills, Direction: shared.DirectionIncoming}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sign(tt.r))
		})
	}
}

func TestSpendByCategory(t *testing.T) {
	pending := rec("999", shared.CategoryFood, jan15)
	pending.Status = shared.RecordStatusPending
	records := []ledger.Record{
		rec("15420", shared.CategoryFood, jan15),
		rec("4580.50", shared.CategoryFood, jan15),
		rec("3500", shared.CategoryTransport, jan15),
		pending,
	}

	assert.Equal(t, "20000.5", SpendByCategory(records, shared.CategoryFood).String())
	assert.Equal(t, "3500", SpendByCategory(records, shared.CategoryTransport).String())
	assert.True(t, SpendByCategory(records, shared.CategoryHealthcare).IsZero())
}

func TestSpendBreakdown(t *testing.T) {
	records := []ledger.Record{
		rec("3500", shared.CategoryTransport, jan15),
		rec("15420", shared.CategoryFood, jan15),
		{Amount: dec("425000"), Category: shared.CategoryIncome, Status: shared.RecordStatusCompleted},
	}

	got := SpendBreakdown(records)
	require.Len(t, got, 2)
	assert.Equal(t, shared.CategoryFood, got[0].Category, "display order")
	assert.Equal(t, shared.CategoryTransport, got[1].Category)
	assert.Equal(t, shared.CategoryFood.Style(), got[0].Style)
	assert.Empty(t, SpendBreakdown(nil))
}

func TestBudgetUtilization(t *testing.T) {
	tests := []struct {
		name        string
		spent       string
		limit       string
		wantPercent int64
		wantStatus  UtilizationStatus
	}{
		{"food near limit", "95500", "120000", 80, StatusNearLimit},
		{"exact limit", "120000", "120000", 100, StatusOverBudget},
		{"over", "30000", "25000", 120, StatusOverBudget},
		{"threshold 75", "75", "100", 75, StatusNearLimit},
		{"just under 75", "74.4", "100", 74, StatusOnTrack},
		{"half rounds away from zero", "1", "8", 13, StatusOnTrack},
		{"zero spent", "0", "45000", 0, StatusOnTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := BudgetUtilization(dec(tt.spent), dec(tt.limit))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPercent, u.Percent)
			assert.Equal(t, tt.wantStatus, u.Status)
		})
	}

	t.Run("zero limit", func(t *testing.T) {
		_, err := BudgetUtilization(dec("95500"), decimal.Zero)
		var vErr ledger.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "limit", vErr.Field)
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := BudgetUtilization(dec("1"), dec("-10"))
		assert.ErrorIs(t, err, ledger.ValidationError{})
	})

	t.Run("negative spent", func(t *testing.T) {
		_, err := BudgetUtilization(dec("-1"), dec("10"))
		assert.ErrorIs(t, err, ledger.ValidationError{})
	})
}

func TestBuildBudgetReport(t *testing.T) {
	records := []ledger.Record{
		rec("95500", shared.CategoryFood, jan15),
		rec("40000", shared.CategoryTransport, jan15),
		rec("7000", shared.CategoryTransport, jan15.AddDate(0, -1, 0)), // previous month
	}
	limits := map[shared.Category]decimal.Decimal{
		shared.CategoryFood:       dec("120000"),
		shared.CategoryTransport:  dec("45000"),
		shared.CategoryHealthcare: dec("20000"),
	}

	report, err := BuildBudgetReport(records, limits, jan15)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), report.Month)
	require.Len(t, report.Lines, 3)
	assert.Equal(t, shared.CategoryFood, report.Lines[0].Category)
	assert.Equal(t, int64(80), report.Lines[0].Utilization.Percent)
	assert.Equal(t, "24500", report.Lines[0].Remaining.String())
	assert.Equal(t, shared.CategoryTransport, report.Lines[1].Category)
	assert.Equal(t, "40000", report.Lines[1].Spent.String())
	assert.Equal(t, StatusNearLimit, report.Lines[1].Utilization.Status)
	assert.Equal(t, shared.CategoryHealthcare, report.Lines[2].Category)
	assert.True(t, report.Lines[2].Spent.IsZero())
	assert.Equal(t, "135500", report.TotalSpent.String())
	assert.Equal(t, "185000", report.TotalLimit.String())
	assert.Equal(t, int64(73), report.Utilization.Percent)

	empty, err := BuildBudgetReport(records, nil, jan15)
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
	assert.Equal(t, StatusOnTrack, empty.Utilization.Status)
}

func TestMonthlyTrend(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	income := ledger.Record{Amount: dec("425000"), Category: shared.CategoryIncome, Status: shared.RecordStatusCompleted, CreatedAt: now}
	records := []ledger.Record{
		rec("1000", shared.CategoryFood, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		rec("250.50", shared.CategoryTransport, time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)),
		rec("4000", shared.CategoryBills, time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)),
		rec("9999", shared.CategoryFood, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)), // outside window
		income,
	}

	seq := MonthlyTrend(records, 3, now)
	got := slices.Collect(seq)
	require.Len(t, got, 3)

	assert.Equal(t, "Jan 2024", got[0].Label)
	assert.Equal(t, "4000", got[0].TotalSpent.String())
	assert.Equal(t, "Feb 2024", got[1].Label)
	assert.True(t, got[1].TotalSpent.IsZero())
	assert.Equal(t, "Mar 2024", got[2].Label)
	assert.Equal(t, "1250.5", got[2].TotalSpent.String())

	again := slices.Collect(seq)
	assert.Equal(t, got, again, "ranging twice yields the same sequence")

	t.Run("early stop", func(t *testing.T) {
		var labels []string
		for m := range MonthlyTrend(records, 12, now) {
			labels = append(labels, m.Label)
			if len(labels) == 2 {
				break
			}
		}
		assert.Equal(t, []string{"Apr 2023", "May 2023"}, labels)
	})

	t.Run("non-positive window", func(t *testing.T) {
		assert.Empty(t, slices.Collect(MonthlyTrend(records, 0, now)))
	})

	t.Run("year boundary", func(t *testing.T) {
		got := slices.Collect(MonthlyTrend(nil, 2, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
		require.Len(t, got, 2)
		assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), got[0].Month)
	})
}
