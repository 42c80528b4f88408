// Package seed loads a small, realistic history into an empty ledger so the
// dashboard views have something to show in demos and local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// Importer is the part of the ledger service the loader needs
type Importer interface {
	Import(ctx context.Context, rec ledger.Record) (*service.Confirmation, error)
}

type sample struct {
	daysAgo      int
	kind         shared.RecordKind
	direction    shared.Direction
	counterparty string
	amount       string
	category     shared.Category
	metadata     ledger.Metadata
}

var samples = []sample{
	{0, shared.RecordKindTransfer, shared.DirectionOutgoing, "Shoprite Victoria Island", "15420.00", shared.CategoryFood, ledger.Metadata{Description: "Weekly groceries"}},
	{1, shared.RecordKindTransfer, shared.DirectionIncoming, "Salary - GTBank", "425000.00", shared.CategoryIncome, ledger.Metadata{Description: "Monthly salary deposit"}},
	{2, shared.RecordKindTransfer, shared.DirectionOutgoing, "Netflix Subscription", "2900.00", shared.CategoryEntertainment, ledger.Metadata{Description: "Monthly streaming"}},
	{3, shared.RecordKindTransfer, shared.DirectionOutgoing, "Total Energies - Ikeja", "8750.00", shared.CategoryTransport, ledger.Metadata{Description: "Fuel purchase"}},
	{3, shared.RecordKindTransfer, shared.DirectionOutgoing, "Cafe Neo Lekki", "1200.00", shared.CategoryFood, ledger.Metadata{Description: "Morning coffee"}},
	{4, shared.RecordKindTransfer, shared.DirectionIncoming, "Freelance - Paystack", "75000.00", shared.CategoryIncome, ledger.Metadata{Description: "Web design project"}},
	{5, shared.RecordKindBillPayment, shared.DirectionOutgoing, "EKEDC", "18500.00", shared.CategoryUtilities, ledger.Metadata{Description: "Electricity bill", BillType: "electricity", Provider: "EKEDC"}},
	{6, shared.RecordKindTransfer, shared.DirectionOutgoing, "Jumia Order", "24999.00", shared.CategoryShopping, ledger.Metadata{Description: "Online shopping"}},
}

// Records returns the sample history dated relative to now, newest first
func Records(now time.Time) []ledger.Record {
	now = now.UTC()
	out := make([]ledger.Record, 0, len(samples))
	for i, s := range samples {
		out = append(out, ledger.Record{
			Kind:         s.kind,
			Direction:    s.direction,
			Amount:       decimal.RequireFromString(s.amount),
			Counterparty: s.counterparty,
			Category:     s.category,
			Status:       shared.RecordStatusCompleted,
			// a minute apart keeps same-day samples in listed order
			CreatedAt:      now.AddDate(0, 0, -s.daysAgo).Add(-time.Duration(i) * time.Minute),
			IdempotencyKey: fmt.Sprintf("seed-%02d", i+1),
			Metadata:       s.metadata,
		})
	}
	return out
}

// Load imports the sample history. Each sample carries a fixed idempotency key,
// so loading twice leaves the ledger unchanged.
func Load(ctx context.Context, logger *slog.Logger, importer Importer, now time.Time) (int, error) {
	imported := 0
	for _, rec := range Records(now) {
		conf, err := importer.Import(ctx, rec)
		if err != nil {
			return imported, fmt.Errorf("failed to import sample %s: %w", rec.IdempotencyKey, err)
		}
		if !conf.Replayed {
			imported++
		}
	}

	logger.Info("Sample data loaded", "imported", imported, "total", len(samples))
	return imported, nil
}
