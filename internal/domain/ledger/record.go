// Package ledger holds the canonical ledger record, the error taxonomy shared by
// every layer and the EventStore port implemented by the data packages.
package ledger

import (
	"strings"
	"time"

	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Record is one immutable money-movement event. Only Status may change after creation.
type Record struct {
	ID             string              `json:"id"`
	Kind           shared.RecordKind   `json:"kind"`
	Direction      shared.Direction    `json:"direction"`
	Amount         decimal.Decimal     `json:"amount"` // always > 0, sign derived from Direction/Category
	Counterparty   string              `json:"counterparty"`
	Category       shared.Category     `json:"category"`
	Status         shared.RecordStatus `json:"status"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Metadata       Metadata            `json:"metadata"`
}

// Metadata carries kind-specific details
type Metadata struct {
	Description   string `json:"description,omitempty"`
	SenderName    string `json:"sender_name,omitempty"`
	BillType      string `json:"bill_type,omitempty"`
	Provider      string `json:"provider,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// Validate checks the record invariants before it is persisted
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ValidationError{Field: "id", Message: "id is required"}
	}
	switch r.Kind {
	case shared.RecordKindTransfer, shared.RecordKindMoneyRequest, shared.RecordKindBillPayment:
	default:
		return ValidationError{Field: "kind", Message: "unknown record kind: " + string(r.Kind)}
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(r.Counterparty) == "" {
		return ValidationError{Field: "counterparty", Message: "counterparty is required"}
	}
	if !r.Category.Valid() {
		return ValidationError{Field: "category", Message: "unknown category: " + string(r.Category)}
	}
	switch r.Status {
	case shared.RecordStatusPending, shared.RecordStatusCompleted, shared.RecordStatusFailed:
	default:
		return ValidationError{Field: "status", Message: "unknown status: " + string(r.Status)}
	}
	if r.Direction != shared.DirectionIncoming && r.Direction != shared.DirectionOutgoing {
		return ValidationError{Field: "direction", Message: "unknown direction: " + string(r.Direction)}
	}
	if r.CreatedAt.IsZero() {
		return ValidationError{Field: "created_at", Message: "created_at is required"}
	}
	return nil
}

// Transition moves a pending record to a terminal status
func (r *Record) Transition(to shared.RecordStatus) error {
	if r.Status != shared.RecordStatusPending || !to.IsTerminal() {
		return ErrInvalidTransition{From: r.Status, To: to}
	}
	r.Status = to
	return nil
}

// AmountDecimalPlaces is the precision every store keeps amounts at
const AmountDecimalPlaces = 2

// ValidateAmount rejects zero and negative amounts and anything finer than a kobo.
// Trailing zeros are fine: 1.500 is accepted, 1.005 is not.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	if !amount.Equal(amount.Truncate(AmountDecimalPlaces)) {
		return ValidationError{Field: "amount", Message: "amount must have at most 2 decimal places"}
	}
	return nil
}
