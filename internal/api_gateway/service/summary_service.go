package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/aggregation"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// MaxTrendMonths bounds the trend window a caller may ask for
const MaxTrendMonths = 24

// Summary is the dashboard view of the ledger
type Summary struct {
	Balance         decimal.Decimal             `json:"balance"`
	Month           time.Time                   `json:"month"`
	SpendByCategory []aggregation.CategoryTotal `json:"spend_by_category"`
	Trend           []aggregation.MonthlySpend  `json:"trend"`
	RecordCount     int                         `json:"record_count"`
}

// SummaryServiceImpl implements the SummaryService interface over the full record history
type SummaryServiceImpl struct {
	store  ledger.EventStore
	limits map[shared.Category]decimal.Decimal
	now    func() time.Time
	logger *slog.Logger
}

// NewSummaryService creates a summary service measuring spend against limits
func NewSummaryService(logger *slog.Logger, store ledger.EventStore, limits map[shared.Category]decimal.Decimal) SummaryService {
	return &SummaryServiceImpl{
		store:  store,
		limits: limits,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

func (s *SummaryServiceImpl) Summary(ctx context.Context, months int) (*Summary, error) {
	if months < 1 || months > MaxTrendMonths {
		return nil, ledger.ValidationError{Field: "months", Message: "months must be between 1 and 24"}
	}

	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load ledger history for summary", "error", err)
		return nil, err
	}

	now := s.now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth := slices.DeleteFunc(slices.Clone(records), func(r ledger.Record) bool {
		return r.CreatedAt.Before(month)
	})

	return &Summary{
		Balance:         aggregation.TotalBalance(records),
		Month:           month,
		SpendByCategory: aggregation.SpendBreakdown(thisMonth),
		Trend:           slices.Collect(aggregation.MonthlyTrend(records, months, now)),
		RecordCount:     len(records),
	}, nil
}

func (s *SummaryServiceImpl) Budgets(ctx context.Context) (*aggregation.BudgetReport, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load ledger history for budgets", "error", err)
		return nil, err
	}

	report, err := aggregation.BuildBudgetReport(records, s.limits, s.now())
	if err != nil {
		return nil, err
	}
	return &report, nil
}
