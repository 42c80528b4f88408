package service

import (
	"context"

	"github.com/personal-finance-ledger/internal/aggregation"
	"github.com/personal-finance-ledger/internal/domain/ledger"
)

// LedgerService records money-movement intents and serves the activity feeds
type LedgerService interface {
	// RecordTransfer stores a completed outgoing transfer and adds it to the recent-activity feed.
	// Returns ValidationError before touching storage, ErrIdempotencyKeyReused when the key
	// was already used for a different transfer.
	RecordTransfer(ctx context.Context, intent TransferIntent) (*Confirmation, error)

	// RecordRequest stores a pending money request. Requests are not part of the recent-activity feed.
	RecordRequest(ctx context.Context, intent RequestIntent) (*Confirmation, error)

	// RecordBillPayment stores a completed bill payment and adds it to the recent-activity feed.
	RecordBillPayment(ctx context.Context, intent BillPaymentIntent) (*Confirmation, error)

	// ListRecent returns up to the feed capacity of records, newest first
	ListRecent(ctx context.Context) ([]ledger.Record, error)

	// ListPendingRequests returns every outstanding money request, newest first
	ListPendingRequests(ctx context.Context) ([]ledger.Record, error)

	// GetRecord returns NotFoundError when id is unknown
	GetRecord(ctx context.Context, id string) (*ledger.Record, error)

	// History returns every stored record, newest first
	History(ctx context.Context) ([]ledger.Record, error)

	// Import stores a fully specified record, e.g. sample or back-filled data
	Import(ctx context.Context, rec ledger.Record) (*Confirmation, error)
}

// SummaryService computes the derived views shown on the dashboard
type SummaryService interface {
	// Summary returns the balance, this month's spend breakdown and a months-long trend
	Summary(ctx context.Context, months int) (*Summary, error)

	// Budgets measures this month's spend against the configured limits
	Budgets(ctx context.Context) (*aggregation.BudgetReport, error)
}
