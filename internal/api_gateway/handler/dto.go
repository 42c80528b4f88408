package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/aggregation"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/domain/ledger"
)

// SendMoneyRequest represents a request to transfer money to a recipient
type SendMoneyRequest struct {
	Recipient      string          `json:"recipient"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	SenderName     string          `json:"senderName,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// RequestMoneyRequest represents a request to ask someone for money
type RequestMoneyRequest struct {
	From           string          `json:"from"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// PayBillRequest represents a bill payment
type PayBillRequest struct {
	BillType       string          `json:"billType"`
	Provider       string          `json:"provider"`
	Amount         decimal.Decimal `json:"amount"`
	AccountNumber  string          `json:"accountNumber,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// RecordedResponse is returned by every successful write
type RecordedResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	RequestID     string `json:"requestId,omitempty"`
	Message       string `json:"message"`
}

// RecordResponse represents a ledger record in API responses
type RecordResponse struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	SignedAmount  decimal.Decimal `json:"signedAmount"`
	Counterparty  string          `json:"counterparty"`
	Category      string          `json:"category"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	Status        string          `json:"status"`
	Description   string          `json:"description,omitempty"`
	SenderName    string          `json:"senderName,omitempty"`
	BillType      string          `json:"billType,omitempty"`
	Provider      string          `json:"provider,omitempty"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	CreatedAt     string          `json:"createdAt"`
}

// TransactionListResponse represents the recent-activity feed
type TransactionListResponse struct {
	Transactions []RecordResponse `json:"transactions"`
}

// TransactionDetailResponse wraps a single record
type TransactionDetailResponse struct {
	Transaction RecordResponse `json:"transaction"`
}

// RequestListResponse represents the outstanding money requests
type RequestListResponse struct {
	Requests []RecordResponse `json:"requests"`
}

// CategorySpendResponse is one slice of the spend breakdown
type CategorySpendResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"`
}

// TrendPointResponse is one month of the spend trend
type TrendPointResponse struct {
	Month      string          `json:"month"`
	Label      string          `json:"label"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// SummaryResponse represents the dashboard summary
type SummaryResponse struct {
	Balance         decimal.Decimal         `json:"balance"`
	Month           string                  `json:"month"`
	SpendByCategory []CategorySpendResponse `json:"spendByCategory"`
	Trend           []TrendPointResponse    `json:"trend"`
	RecordCount     int                     `json:"recordCount"`
}

// BudgetLineResponse is one category of the budget report
type BudgetLineResponse struct {
	Category    string          `json:"category"`
	Spent       decimal.Decimal `json:"spent"`
	Limit       decimal.Decimal `json:"limit"`
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization int64           `json:"utilization"`
	Status      string          `json:"status"`
	Icon        string          `json:"icon"`
	Color       string          `json:"color"`
}

// BudgetsResponse represents the monthly budget report
type BudgetsResponse struct {
	Month       string               `json:"month"`
	Budgets     []BudgetLineResponse `json:"budgets"`
	TotalSpent  decimal.Decimal      `json:"totalSpent"`
	TotalLimit  decimal.Decimal      `json:"totalLimit"`
	Utilization int64                `json:"utilization"`
	Status      string               `json:"status"`
}

// SummaryQuery holds the query parameters of the summary endpoint
type SummaryQuery struct {
	Months int `form:"months,default=6"`
}

const monthLayout = "2006-01"

func mapRecordToResponse(r ledger.Record) RecordResponse {
	style := r.Category.Style()
	return RecordResponse{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Direction:     string(r.Direction),
		Amount:        r.Amount,
		SignedAmount:  aggregation.SignedAmount(r),
		Counterparty:  r.Counterparty,
		Category:      string(r.Category),
		Icon:          style.Icon,
		Color:         style.Color,
		Status:        string(r.Status),
		Description:   r.Metadata.Description,
		SenderName:    r.Metadata.SenderName,
		BillType:      r.Metadata.BillType,
		Provider:      r.Metadata.Provider,
		AccountNumber: r.Metadata.AccountNumber,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapRecordsToResponse(records []ledger.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, mapRecordToResponse(r))
	}
	return out
}

func mapSummaryToResponse(s *service.Summary) SummaryResponse {
	resp := SummaryResponse{
		Balance:         s.Balance,
		Month:           s.Month.Format(monthLayout),
		SpendByCategory: make([]CategorySpendResponse, 0, len(s.SpendByCategory)),
		Trend:           make([]TrendPointResponse, 0, len(s.Trend)),
		RecordCount:     s.RecordCount,
	}
	for _, ct := range s.SpendByCategory {
		resp.SpendByCategory = append(resp.SpendByCategory, CategorySpendResponse{
			Category: string(ct.Category),
			Total:    ct.Total,
			Icon:     ct.Style.Icon,
			Color:    ct.Style.Color,
		})
	}
	for _, m := range s.Trend {
		resp.Trend = append(resp.Trend, TrendPointResponse{
			Month:      m.Month.Format(monthLayout),
			Label:      m.Label,
			TotalSpent: m.TotalSpent,
		})
	}
	return resp
}

func mapBudgetReportToResponse(r *aggregation.BudgetReport) BudgetsResponse {
	resp := BudgetsResponse{
		Month:       r.Month.Format(monthLayout),
		Budgets:     make([]BudgetLineResponse, 0, len(r.Lines)),
		TotalSpent:  r.TotalSpent,
		TotalLimit:  r.TotalLimit,
		Utilization: r.Utilization.Percent,
		Status:      string(r.Utilization.Status),
	}
	for _, l := range r.Lines {
		resp.Budgets = append(resp.Budgets, BudgetLineResponse{
			Category:    string(l.Category),
			Spent:       l.Spent,
			Limit:       l.Limit,
			Remaining:   l.Remaining,
			Utilization: l.Utilization.Percent,
			Status:      string(l.Utilization.Status),
			Icon:        l.Style.Icon,
			Color:       l.Style.Color,
		})
	}
	return resp
}
