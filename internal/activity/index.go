// Package activity maintains bounded, newest-first lists of ledger records
// (the recent-activity feed) on top of an EventStore.
package activity

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/personal-finance-ledger/internal/domain/ledger"
)

// DefaultCapacity is the number of entries the recent-activity feed keeps
const DefaultCapacity = 50

// Index is a bounded list stored under one key. Appends are serialized per index;
// reads go straight to the store and never block behind a writer.
type Index struct {
	store    ledger.EventStore
	key      string
	capacity int
	mu       sync.Mutex
}

// NewIndex creates an index over key. A non-positive capacity falls back to DefaultCapacity.
func NewIndex(store ledger.EventStore, key string, capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Index{
		store:    store,
		key:      key,
		capacity: capacity,
	}
}

// Key returns the store key the list lives under
func (i *Index) Key() string {
	return i.key
}

// Capacity returns the maximum number of entries kept
func (i *Index) Capacity() int {
	return i.capacity
}

// Append inserts rec keeping the list ordered by CreatedAt descending and trims it to capacity.
// A record already present is left where it is, so retried appends are no-ops.
func (i *Index) Append(ctx context.Context, rec ledger.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	current, err := i.store.GetIndex(ctx, i.key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", i.key, err)
	}

	if slices.ContainsFunc(current, func(r ledger.Record) bool { return r.ID == rec.ID }) {
		return nil
	}

	// first position whose entry is not newer; on equal timestamps the later arrival goes first
	pos := slices.IndexFunc(current, func(r ledger.Record) bool { return !r.CreatedAt.After(rec.CreatedAt) })
	if pos < 0 {
		pos = len(current)
	}
	if pos >= i.capacity {
		return nil
	}

	next := slices.Insert(current, pos, rec)
	if len(next) > i.capacity {
		next = next[:i.capacity]
	}

	if err := i.store.PutIndex(ctx, i.key, next); err != nil {
		return fmt.Errorf("failed to write %s: %w", i.key, err)
	}
	return nil
}

// List returns the stored entries, newest first
func (i *Index) List(ctx context.Context) ([]ledger.Record, error) {
	records, err := i.store.GetIndex(ctx, i.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", i.key, err)
	}
	return records, nil
}
