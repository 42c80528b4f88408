package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/personal-finance-ledger/internal/aggregation"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Summary(ctx context.Context, months int) (*service.Summary, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Summary), args.Error(1)
}

func (m *MockSummaryService) Budgets(ctx context.Context) (*aggregation.BudgetReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregation.BudgetReport), args.Error(1)
}

func newSummaryRouter(svc service.SummaryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSummaryHandler(newTestLogger(), svc)

	router := gin.New()
	router.GET("/summary", h.Summary)
	router.GET("/budgets", h.Budgets)
	return router
}

func TestSummaryHandler_Summary(t *testing.T) {
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	summary := &service.Summary{
		Balance: decimal.NewFromInt(409580),
		Month:   march,
		SpendByCategory: []aggregation.CategoryTotal{
			{Category: shared.CategoryFood, Total: decimal.NewFromInt(15420), Style: shared.CategoryFood.Style()},
		},
		Trend: []aggregation.MonthlySpend{
			{Month: march.AddDate(0, -1, 0), Label: "Feb 2024", TotalSpent: decimal.NewFromInt(30000)},
			{Month: march, Label: "Mar 2024", TotalSpent: decimal.NewFromInt(90420)},
		},
		RecordCount: 9,
	}

	t.Run("DefaultWindow", func(t *testing.T) {
		svc := new(MockSummaryService)
		svc.On("Summary", mock.Anything, 6).Return(summary, nil)

		rr := get(t, newSummaryRouter(svc), "/summary")

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody[SummaryResponse](t, rr)
		assert.True(t, decimal.NewFromInt(409580).Equal(body.Balance))
		assert.Equal(t, "2024-03", body.Month)
		require.Len(t, body.SpendByCategory, 1)
		assert.Equal(t, "utensils", body.SpendByCategory[0].Icon)
		require.Len(t, body.Trend, 2)
		assert.Equal(t, "2024-02", body.Trend[0].Month)
		assert.Equal(t, "Mar 2024", body.Trend[1].Label)
		assert.Equal(t, 9, body.RecordCount)
		svc.AssertExpectations(t)
	})

	t.Run("ExplicitWindow", func(t *testing.T) {
		svc := new(MockSummaryService)
		svc.On("Summary", mock.Anything, 12).Return(summary, nil)

		rr := get(t, newSummaryRouter(svc), "/summary?months=12")

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("NonNumericWindow", func(t *testing.T) {
		svc := new(MockSummaryService)

		rr := get(t, newSummaryRouter(svc), "/summary?months=many")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything)
	})

	t.Run("WindowOutOfRange", func(t *testing.T) {
		svc := new(MockSummaryService)
		svc.On("Summary", mock.Anything, 40).
			Return(nil, ledger.ValidationError{Field: "months", Message: "must be between 1 and 24"})

		rr := get(t, newSummaryRouter(svc), "/summary?months=40")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "months: must be between 1 and 24", decodeBody[ErrorResponse](t, rr).Error)
	})
}

func TestSummaryHandler_Budgets(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		util := aggregation.Utilization{Percent: 80, Status: aggregation.StatusNearLimit}
		report := &aggregation.BudgetReport{
			Month: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Lines: []aggregation.BudgetLine{{
				Category:    shared.CategoryFood,
				Spent:       decimal.NewFromInt(96000),
				Limit:       decimal.NewFromInt(120000),
				Remaining:   decimal.NewFromInt(24000),
				Utilization: util,
				Style:       shared.CategoryFood.Style(),
			}},
			TotalSpent:  decimal.NewFromInt(96000),
			TotalLimit:  decimal.NewFromInt(120000),
			Utilization: util,
		}
		svc := new(MockSummaryService)
		svc.On("Budgets", mock.Anything).Return(report, nil)

		rr := get(t, newSummaryRouter(svc), "/budgets")

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody[BudgetsResponse](t, rr)
		assert.Equal(t, "2024-03", body.Month)
		assert.Equal(t, int64(80), body.Utilization)
		assert.Equal(t, "NEAR_LIMIT", body.Status)
		require.Len(t, body.Budgets, 1)
		assert.True(t, decimal.NewFromInt(24000).Equal(body.Budgets[0].Remaining))
		assert.Equal(t, "Food", body.Budgets[0].Category)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		svc := new(MockSummaryService)
		svc.On("Budgets", mock.Anything).Return(nil, ledger.StorageError{Op: "list", Err: errors.New("timeout")})

		rr := get(t, newSummaryRouter(svc), "/budgets")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
