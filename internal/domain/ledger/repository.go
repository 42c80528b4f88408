package ledger

import "context"

// RecentActivityKey is the index key of the recent-activity feed
const RecentActivityKey = "recent_transactions"

// EventStore is the durable key/value store behind the ledger. Every write is
// durable before it returns and either fully applies or leaves prior state untouched.
type EventStore interface {
	// Put stores a new record. Returns ConflictError if the ID already exists.
	Put(ctx context.Context, record *Record) error

	// Get returns the record stored under id or NotFoundError
	Get(ctx context.Context, id string) (*Record, error)

	// GetIndex returns the list stored under an auxiliary key, empty when the key is unset
	GetIndex(ctx context.Context, key string) ([]Record, error)

	// PutIndex replaces the list stored under an auxiliary key as one unit
	PutIndex(ctx context.Context, key string, records []Record) error

	// Count returns the number of stored records
	Count(ctx context.Context) (int64, error)

	// List returns every stored record, newest first
	List(ctx context.Context) ([]Record, error)
}
