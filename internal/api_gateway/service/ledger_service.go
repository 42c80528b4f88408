package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/activity"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/personal-finance-ledger/internal/platform/messaging/producers"
)

// DefaultSenderName is recorded on transfers that do not name a sender
const DefaultSenderName = "You"

// recordNamespace scopes the name-based IDs derived from idempotency keys
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:personal-finance-ledger:records"))

// TransferIntent asks to send money to a recipient
type TransferIntent struct {
	Recipient      string
	Amount         decimal.Decimal
	Description    string
	SenderName     string
	IdempotencyKey string
	CorrelationID  string
}

// RequestIntent asks a counterparty for money
type RequestIntent struct {
	From           string
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
	CorrelationID  string
}

// BillPaymentIntent asks to pay a bill to a provider
type BillPaymentIntent struct {
	BillType       string
	Provider       string
	Amount         decimal.Decimal
	AccountNumber  string
	IdempotencyKey string
	CorrelationID  string
}

// Confirmation is returned for every accepted intent.
// Replayed is set when the intent had already been recorded under the same idempotency key.
type Confirmation struct {
	ID       string
	Message  string
	Record   *ledger.Record
	Replayed bool
}

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	store     ledger.EventStore
	recent    *activity.Index
	publisher producers.MessagePublisher
	currency  string
	now       func() time.Time
	logger    *slog.Logger
}

// NewLedgerService creates a ledger service over store. recent receives transfers and bill
// payments; money requests stay out of it and are listed from the store.
func NewLedgerService(
	logger *slog.Logger,
	store ledger.EventStore,
	recent *activity.Index,
	publisher producers.MessagePublisher,
	currencySymbol string,
) LedgerService {
	if publisher == nil {
		publisher = producers.NopPublisher{}
	}
	return &LedgerServiceImpl{
		store:     store,
		recent:    recent,
		publisher: publisher,
		currency:  currencySymbol,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ledger.ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// RecordTransfer validates and stores an outgoing transfer
func (s *LedgerServiceImpl) RecordTransfer(ctx context.Context, intent TransferIntent) (*Confirmation, error) {
	if err := required("recipient", intent.Recipient); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAmount(intent.Amount); err != nil {
		return nil, err
	}

	sender := strings.TrimSpace(intent.SenderName)
	if sender == "" {
		sender = DefaultSenderName
	}

	rec := s.newRecord(shared.RecordKindTransfer, intent.IdempotencyKey)
	rec.Amount = intent.Amount
	rec.Counterparty = strings.TrimSpace(intent.Recipient)
	rec.Status = shared.RecordStatusCompleted
	rec.Metadata = ledger.Metadata{
		Description: strings.TrimSpace(intent.Description),
		SenderName:  sender,
	}

	return s.commit(ctx, rec, s.recent, intent.CorrelationID)
}

// RecordRequest validates and stores a pending money request
func (s *LedgerServiceImpl) RecordRequest(ctx context.Context, intent RequestIntent) (*Confirmation, error) {
	if err := required("from", intent.From); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAmount(intent.Amount); err != nil {
		return nil, err
	}

	rec := s.newRecord(shared.RecordKindMoneyRequest, intent.IdempotencyKey)
	rec.Amount = intent.Amount
	rec.Counterparty = strings.TrimSpace(intent.From)
	rec.Status = shared.RecordStatusPending
	rec.Metadata = ledger.Metadata{Description: strings.TrimSpace(intent.Description)}

	return s.commit(ctx, rec, nil, intent.CorrelationID)
}

// RecordBillPayment validates and stores a completed bill payment
func (s *LedgerServiceImpl) RecordBillPayment(ctx context.Context, intent BillPaymentIntent) (*Confirmation, error) {
	if err := required("billType", intent.BillType); err != nil {
		return nil, err
	}
	if err := required("provider", intent.Provider); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAmount(intent.Amount); err != nil {
		return nil, err
	}

	billType := strings.TrimSpace(intent.BillType)
	rec := s.newRecord(shared.RecordKindBillPayment, intent.IdempotencyKey)
	rec.Amount = intent.Amount
	rec.Counterparty = strings.TrimSpace(intent.Provider)
	rec.Status = shared.RecordStatusCompleted
	rec.Metadata = ledger.Metadata{
		Description:   shared.BillTypeLabel(billType) + " bill",
		BillType:      billType,
		Provider:      strings.TrimSpace(intent.Provider),
		AccountNumber: strings.TrimSpace(intent.AccountNumber),
	}

	return s.commit(ctx, rec, s.recent, intent.CorrelationID)
}

// Import stores rec as given, filling in the ID, direction, category and timestamp when absent.
// Pending money requests stay out of the feed, everything else is appended to it.
func (s *LedgerServiceImpl) Import(ctx context.Context, rec ledger.Record) (*Confirmation, error) {
	if rec.ID == "" {
		rec.ID = newRecordID(rec.Kind, rec.IdempotencyKey)
	}
	if rec.Direction == "" {
		rec.Direction = shared.DefaultDirection(rec.Kind)
	}
	if rec.Category == "" {
		rec.Category = shared.DefaultCategory(rec.Kind)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	index := s.recent
	if rec.Kind == shared.RecordKindMoneyRequest && rec.Status == shared.RecordStatusPending {
		index = nil
	}
	return s.commit(ctx, &rec, index, "")
}

func (s *LedgerServiceImpl) ListRecent(ctx context.Context) ([]ledger.Record, error) {
	return s.recent.List(ctx)
}

// ListPendingRequests scans the store so no outstanding request is ever cut off by a window
func (s *LedgerServiceImpl) ListPendingRequests(ctx context.Context) ([]ledger.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(records, func(r ledger.Record) bool {
		return r.Kind != shared.RecordKindMoneyRequest || r.Status != shared.RecordStatusPending
	}), nil
}

func (s *LedgerServiceImpl) GetRecord(ctx context.Context, id string) (*ledger.Record, error) {
	if err := required("id", id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *LedgerServiceImpl) History(ctx context.Context) ([]ledger.Record, error) {
	return s.store.List(ctx)
}

func (s *LedgerServiceImpl) newRecord(kind shared.RecordKind, idempotencyKey string) *ledger.Record {
	key := strings.TrimSpace(idempotencyKey)
	return &ledger.Record{
		ID:             newRecordID(kind, key),
		Kind:           kind,
		Direction:      shared.DefaultDirection(kind),
		Category:       shared.DefaultCategory(kind),
		IdempotencyKey: key,
		CreatedAt:      s.now(),
	}
}

// newRecordID derives the ID from the idempotency key when there is one,
// so a retried intent maps onto the record it already created
func newRecordID(kind shared.RecordKind, idempotencyKey string) string {
	var id uuid.UUID
	if idempotencyKey != "" {
		id = uuid.NewSHA1(recordNamespace, []byte(string(kind)+":"+idempotencyKey))
	} else {
		id = uuid.Must(uuid.NewV7())
	}
	return kind.IDPrefix() + "_" + id.String()
}

// commit persists rec, appends it to index and announces it.
// A ConflictError on Put means the same ID was written before: if the stored record
// carries the same intent the call is a replay, otherwise the key was reused.
func (s *LedgerServiceImpl) commit(ctx context.Context, rec *ledger.Record, index *activity.Index, correlationID string) (*Confirmation, error) {
	logger := s.logger
	if correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	replayed := false
	if err := s.store.Put(ctx, rec); err != nil {
		if !errors.Is(err, ledger.ConflictError{}) {
			logger.Error("Failed to store ledger record", "record_id", rec.ID, "kind", string(rec.Kind), "error", err)
			return nil, err
		}

		existing, getErr := s.store.Get(ctx, rec.ID)
		if getErr != nil {
			logger.Error("Failed to load existing ledger record", "record_id", rec.ID, "error", getErr)
			return nil, getErr
		}
		if !sameIntent(existing, rec) {
			logger.Warn("Idempotency key reused with a different intent",
				"record_id", rec.ID,
				"idempotency_key", rec.IdempotencyKey,
			)
			return nil, ledger.ErrIdempotencyKeyReused
		}
		rec = existing
		replayed = true
	}

	// Append skips IDs already listed, so a replay also repairs an index write that failed earlier
	if index != nil {
		if err := index.Append(ctx, *rec); err != nil {
			logger.Error("Failed to update activity index", "record_id", rec.ID, "index", index.Key(), "error", err)
			return nil, err
		}
	}

	if replayed {
		logger.Info("Replayed ledger record", "record_id", rec.ID, "kind", string(rec.Kind))
	} else {
		logger.Info("Ledger record stored",
			"record_id", rec.ID,
			"kind", string(rec.Kind),
			"category", string(rec.Category),
			"amount", rec.Amount.String(),
		)
		if err := s.publisher.Publish(ctx, rec.ID, producers.NewRecordedEvent(rec, correlationID)); err != nil {
			logger.Warn("Failed to publish ledger event", "record_id", rec.ID, "error", err)
		}
	}

	return &Confirmation{
		ID:       rec.ID,
		Message:  s.confirmationMessage(rec),
		Record:   rec,
		Replayed: replayed,
	}, nil
}

func sameIntent(a, b *ledger.Record) bool {
	return a.Kind == b.Kind &&
		a.Amount.Equal(b.Amount) &&
		a.Counterparty == b.Counterparty &&
		a.Category == b.Category &&
		a.Metadata == b.Metadata
}

// FormatAmount renders an amount with the currency symbol and thousands separators, e.g. ₦5,000
// or ₦18,500.5. Trailing zero cents are dropped.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	fixed := amount.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	cents = strings.TrimRight(cents, "0")

	out := sign + symbol + humanize.BigComma(decimal.RequireFromString(whole).BigInt())
	if cents != "" {
		out += "." + cents
	}
	return out
}

func (s *LedgerServiceImpl) confirmationMessage(rec *ledger.Record) string {
	amount := FormatAmount(s.currency, rec.Amount)
	switch rec.Kind {
	case shared.RecordKindMoneyRequest:
		return fmt.Sprintf("Request for %s sent to %s", amount, rec.Counterparty)
	case shared.RecordKindBillPayment:
		return fmt.Sprintf("%s paid to %s successfully", amount, rec.Counterparty)
	}
	if rec.Direction == shared.DirectionIncoming {
		return fmt.Sprintf("%s received from %s", amount, rec.Counterparty)
	}
	return fmt.Sprintf("%s sent to %s successfully", amount, rec.Counterparty)
}
