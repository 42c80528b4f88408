package shared

// RecordKind defines the money-movement intents the ledger records
type RecordKind string

const (
	RecordKindTransfer     RecordKind = "TRANSFER"
	RecordKindMoneyRequest RecordKind = "MONEY_REQUEST"
	RecordKindBillPayment  RecordKind = "BILL_PAYMENT"
)

// IDPrefix returns the identifier prefix used for records of this kind
func (k RecordKind) IDPrefix() string {
	switch k {
	case RecordKindTransfer:
		return "TXN"
	case RecordKindMoneyRequest:
		return "REQ"
	case RecordKindBillPayment:
		return "BILL"
	default:
		return "REC"
	}
}

// RecordStatus defines record settlement states
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "PENDING"
	RecordStatusCompleted RecordStatus = "COMPLETED"
	RecordStatusFailed    RecordStatus = "FAILED"
)

// IsTerminal reports whether no further status transition is allowed
func (s RecordStatus) IsTerminal() bool {
	return s == RecordStatusCompleted || s == RecordStatusFailed
}

// Direction tells whether money leaves or enters the user's wallet.
// Amounts are always stored unsigned; the sign is derived from Direction and Category.
type Direction string

const (
	DirectionOutgoing Direction = "OUTGOING"
	DirectionIncoming Direction = "INCOMING"
)

// DefaultDirection returns the direction implied by a record kind
func DefaultDirection(kind RecordKind) Direction {
	if kind == RecordKindMoneyRequest {
		return DirectionIncoming
	}
	return DirectionOutgoing
}
