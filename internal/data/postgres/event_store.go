// Package postgres provides the PostgreSQL implementation of ledger.EventStore.
// Records are stored one row per record; index lists are stored as JSONB documents.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/personal-finance-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// EventStore implements the ledger.EventStore interface for PostgreSQL
type EventStore struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEventStore creates a new PostgreSQL event store backed by the pool of db
func NewEventStore(logger *slog.Logger, db *persistence.PostgresDB) *EventStore {
	return &EventStore{
		querier: db.Pool(),
		logger:  logger,
	}
}

const recordColumns = `id, kind, direction, amount::text, counterparty, category, status, idempotency_key, created_at, metadata`

// Put inserts a record. A row that already exists is left untouched and reported as ConflictError.
func (s *EventStore) Put(ctx context.Context, record *ledger.Record) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return ledger.StorageError{Op: "put", Err: fmt.Errorf("failed to encode record metadata: %w", err)}
	}

	query := `
		INSERT INTO ledger_records (id, kind, direction, amount, counterparty, category, status, idempotency_key, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := s.querier.Exec(ctx, query,
		record.ID,
		string(record.Kind),
		string(record.Direction),
		record.Amount.String(),
		record.Counterparty,
		string(record.Category),
		string(record.Status),
		record.IdempotencyKey,
		record.CreatedAt,
		metadata,
	)
	if err != nil {
		s.logger.Error("Failed to insert ledger record", "record_id", record.ID, "error", err)
		return ledger.StorageError{Op: "put", Err: fmt.Errorf("failed to insert ledger record: %w", err)}
	}

	if tag.RowsAffected() == 0 {
		return ledger.ConflictError{ID: record.ID}
	}

	return nil
}

// Get retrieves a record by ID
func (s *EventStore) Get(ctx context.Context, id string) (*ledger.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ledger_records
		WHERE id = $1
	`

	record, err := scanRecord(s.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFoundError{ID: id}
		}
		s.logger.Error("Failed to get ledger record", "record_id", id, "error", err)
		return nil, ledger.StorageError{Op: "get", Err: fmt.Errorf("failed to get ledger record: %w", err)}
	}

	return record, nil
}

// GetIndex reads the JSONB list stored under key
func (s *EventStore) GetIndex(ctx context.Context, key string) ([]ledger.Record, error) {
	query := `
		SELECT records
		FROM ledger_indexes
		WHERE key = $1
	`

	var raw []byte
	err := s.querier.QueryRow(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []ledger.Record{}, nil
		}
		s.logger.Error("Failed to get ledger index", "key", key, "error", err)
		return nil, ledger.StorageError{Op: "get index", Err: fmt.Errorf("failed to get ledger index: %w", err)}
	}

	var records []ledger.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, ledger.StorageError{Op: "get index", Err: fmt.Errorf("failed to decode ledger index %s: %w", key, err)}
	}
	if records == nil {
		records = []ledger.Record{}
	}

	return records, nil
}

// PutIndex replaces the list stored under key in a single upsert
func (s *EventStore) PutIndex(ctx context.Context, key string, records []ledger.Record) error {
	if records == nil {
		records = []ledger.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return ledger.StorageError{Op: "put index", Err: fmt.Errorf("failed to encode ledger index: %w", err)}
	}

	query := `
		INSERT INTO ledger_indexes (key, records, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET records = EXCLUDED.records, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.querier.Exec(ctx, query, key, raw, time.Now().UTC()); err != nil {
		s.logger.Error("Failed to store ledger index", "key", key, "size", len(records), "error", err)
		return ledger.StorageError{Op: "put index", Err: fmt.Errorf("failed to store ledger index: %w", err)}
	}

	return nil
}

// Count returns the number of stored records
func (s *EventStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.querier.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_records`).Scan(&count); err != nil {
		s.logger.Error("Failed to count ledger records", "error", err)
		return 0, ledger.StorageError{Op: "count", Err: fmt.Errorf("failed to count ledger records: %w", err)}
	}
	return count, nil
}

// List returns every record, newest first
func (s *EventStore) List(ctx context.Context) ([]ledger.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ledger_records
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.querier.Query(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list ledger records", "error", err)
		return nil, ledger.StorageError{Op: "list", Err: fmt.Errorf("failed to list ledger records: %w", err)}
	}
	defer rows.Close()

	records := []ledger.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, ledger.StorageError{Op: "list", Err: fmt.Errorf("failed to scan ledger record: %w", err)}
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError{Op: "list", Err: fmt.Errorf("error iterating ledger records: %w", err)}
	}

	return records, nil
}

// scanRecord reads one row selected with recordColumns
func scanRecord(row pgx.Row) (*ledger.Record, error) {
	var record ledger.Record
	var kind, direction, category, status, amt string
	var metadata []byte

	err := row.Scan(
		&record.ID,
		&kind,
		&direction,
		&amt,
		&record.Counterparty,
		&category,
		&status,
		&record.IdempotencyKey,
		&record.CreatedAt,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amt)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amt, err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return nil, fmt.Errorf("invalid stored metadata: %w", err)
		}
	}

	record.Amount = amount
	record.Kind = shared.RecordKind(kind)
	record.Direction = shared.Direction(direction)
	record.Category = shared.Category(category)
	record.Status = shared.RecordStatus(status)
	record.CreatedAt = record.CreatedAt.UTC()

	return &record, nil
}

// Compile-time check
var _ ledger.EventStore = (*EventStore)(nil)
