// Package memory provides an in-process implementation of ledger.EventStore.
// It backs local development and tests; state lives as long as the process.
package memory

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/personal-finance-ledger/internal/domain/ledger"
)

// EventStore keeps records and index lists in maps guarded by a RWMutex.
// Values are copied on the way in and out so callers never share stored state.
type EventStore struct {
	mu      sync.RWMutex
	records map[string]ledger.Record
	indexes map[string][]ledger.Record
	logger  *slog.Logger
}

// NewEventStore creates an empty in-memory event store
func NewEventStore(logger *slog.Logger) *EventStore {
	return &EventStore{
		records: make(map[string]ledger.Record),
		indexes: make(map[string][]ledger.Record),
		logger:  logger,
	}
}

// Put stores a record, returning ConflictError when the ID is taken
func (s *EventStore) Put(ctx context.Context, record *ledger.Record) error {
	if err := ctx.Err(); err != nil {
		return ledger.StorageError{Op: "put", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return ledger.ConflictError{ID: record.ID}
	}
	s.records[record.ID] = *record

	s.logger.Debug("Stored ledger record", "record_id", record.ID)
	return nil
}

// Get returns a copy of the record stored under id
func (s *EventStore) Get(ctx context.Context, id string) (*ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, ledger.StorageError{Op: "get", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ledger.NotFoundError{ID: id}
	}
	return &record, nil
}

// GetIndex returns a copy of the list stored under key
func (s *EventStore) GetIndex(ctx context.Context, key string) ([]ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, ledger.StorageError{Op: "get index", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.indexes[key]), nil
}

// PutIndex replaces the list stored under key
func (s *EventStore) PutIndex(ctx context.Context, key string, records []ledger.Record) error {
	if err := ctx.Err(); err != nil {
		return ledger.StorageError{Op: "put index", Err: err}
	}

	stored := slices.Clone(records)

	s.mu.Lock()
	s.indexes[key] = stored
	s.mu.Unlock()

	return nil
}

// Count returns the number of stored records
func (s *EventStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, ledger.StorageError{Op: "count", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

// List returns all records sorted by creation time, newest first
func (s *EventStore) List(ctx context.Context) ([]ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, ledger.StorageError{Op: "list", Err: err}
	}

	s.mu.RLock()
	records := make([]ledger.Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b ledger.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return records, nil
}

// Compile-time check
var _ ledger.EventStore = (*EventStore)(nil)
