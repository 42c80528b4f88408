package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

const (
	// RecordsCollectionName holds one document per ledger record, keyed by record ID
	RecordsCollectionName = "ledger_records"
	// IndexesCollectionName holds one document per named index list
	IndexesCollectionName = "ledger_indexes"
)

// EventStore implements the ledger.EventStore interface for MongoDB
type EventStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEventStore creates a new MongoDB event store
func NewEventStore(logger *slog.Logger, db *mongo.Database) *EventStore {
	return &EventStore{
		db:     db,
		logger: logger,
	}
}

type metadataDocument struct {
	Description   string `bson:"description,omitempty"`
	SenderName    string `bson:"sender_name,omitempty"`
	BillType      string `bson:"bill_type,omitempty"`
	Provider      string `bson:"provider,omitempty"`
	AccountNumber string `bson:"account_number,omitempty"`
}

type recordDocument struct {
	ID             string               `bson:"_id"`
	Kind           string               `bson:"kind"`
	Direction      string               `bson:"direction"`
	Amount         primitive.Decimal128 `bson:"amount"`
	Counterparty   string               `bson:"counterparty"`
	Category       string               `bson:"category"`
	Status         string               `bson:"status"`
	IdempotencyKey string               `bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time            `bson:"created_at"`
	Metadata       metadataDocument     `bson:"metadata"`
}

type indexDocument struct {
	Key       string           `bson:"_id"`
	Records   []recordDocument `bson:"records"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

func toDocument(r *ledger.Record) (recordDocument, error) {
	amount, err := primitive.ParseDecimal128(r.Amount.String())
	if err != nil {
		return recordDocument{}, fmt.Errorf("failed to convert amount %s: %w", r.Amount, err)
	}
	return recordDocument{
		ID:             r.ID,
		Kind:           string(r.Kind),
		Direction:      string(r.Direction),
		Amount:         amount,
		Counterparty:   r.Counterparty,
		Category:       string(r.Category),
		Status:         string(r.Status),
		IdempotencyKey: r.IdempotencyKey,
		CreatedAt:      r.CreatedAt.UTC(),
		Metadata:       metadataDocument(r.Metadata),
	}, nil
}

func (d recordDocument) toRecord() (ledger.Record, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return ledger.Record{}, fmt.Errorf("invalid stored amount for %s: %w", d.ID, err)
	}
	return ledger.Record{
		ID:             d.ID,
		Kind:           shared.RecordKind(d.Kind),
		Direction:      shared.Direction(d.Direction),
		Amount:         amount,
		Counterparty:   d.Counterparty,
		Category:       shared.Category(d.Category),
		Status:         shared.RecordStatus(d.Status),
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt.UTC(),
		Metadata:       ledger.Metadata(d.Metadata),
	}, nil
}

// EnsureIndexes creates the secondary indexes used for feed and idempotency lookups
func (s *EventStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(RecordsCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}

// Put inserts a record. The unique _id turns a second write under the same ID into ConflictError.
func (s *EventStore) Put(ctx context.Context, record *ledger.Record) error {
	doc, err := toDocument(record)
	if err != nil {
		return ledger.StorageError{Op: "put", Err: err}
	}

	_, err = s.db.Collection(RecordsCollectionName).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ConflictError{ID: record.ID}
		}
		s.logger.Error("Failed to insert ledger record",
			"record_id", record.ID,
			"error", err)
		return ledger.StorageError{Op: "put", Err: fmt.Errorf("failed to insert ledger record: %w", err)}
	}

	return nil
}

// Get retrieves a record by ID
func (s *EventStore) Get(ctx context.Context, id string) (*ledger.Record, error) {
	var doc recordDocument
	err := s.db.Collection(RecordsCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.NotFoundError{ID: id}
		}
		s.logger.Error("Failed to get ledger record",
			"record_id", id,
			"error", err)
		return nil, ledger.StorageError{Op: "get", Err: fmt.Errorf("failed to get ledger record: %w", err)}
	}

	record, err := doc.toRecord()
	if err != nil {
		return nil, ledger.StorageError{Op: "get", Err: err}
	}
	return &record, nil
}

// GetIndex returns the list stored under key, or an empty list when none exists
func (s *EventStore) GetIndex(ctx context.Context, key string) ([]ledger.Record, error) {
	var doc indexDocument
	err := s.db.Collection(IndexesCollectionName).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []ledger.Record{}, nil
		}
		s.logger.Error("Failed to get ledger index",
			"key", key,
			"error", err)
		return nil, ledger.StorageError{Op: "get index", Err: fmt.Errorf("failed to get ledger index: %w", err)}
	}

	records := make([]ledger.Record, 0, len(doc.Records))
	for _, d := range doc.Records {
		r, err := d.toRecord()
		if err != nil {
			return nil, ledger.StorageError{Op: "get index", Err: err}
		}
		records = append(records, r)
	}
	return records, nil
}

// PutIndex replaces the list stored under key with a single upserting replace
func (s *EventStore) PutIndex(ctx context.Context, key string, records []ledger.Record) error {
	docs := make([]recordDocument, 0, len(records))
	for i := range records {
		d, err := toDocument(&records[i])
		if err != nil {
			return ledger.StorageError{Op: "put index", Err: err}
		}
		docs = append(docs, d)
	}

	doc := indexDocument{Key: key, Records: docs, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(IndexesCollectionName).ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		s.logger.Error("Failed to store ledger index",
			"key", key,
			"size", len(records),
			"error", err)
		return ledger.StorageError{Op: "put index", Err: fmt.Errorf("failed to store ledger index: %w", err)}
	}
	return nil
}

// Count returns the number of stored records
func (s *EventStore) Count(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(RecordsCollectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		s.logger.Error("Failed to count ledger records", "error", err)
		return 0, ledger.StorageError{Op: "count", Err: fmt.Errorf("failed to count ledger records: %w", err)}
	}
	return count, nil
}

// List returns every record, newest first
func (s *EventStore) List(ctx context.Context) ([]ledger.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.db.Collection(RecordsCollectionName).Find(ctx, bson.M{}, opts)
	if err != nil {
		s.logger.Error("Failed to list ledger records", "error", err)
		return nil, ledger.StorageError{Op: "list", Err: fmt.Errorf("failed to list ledger records: %w", err)}
	}
	defer cursor.Close(ctx)

	var docs []recordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		s.logger.Error("Failed to decode ledger records", "error", err)
		return nil, ledger.StorageError{Op: "list", Err: fmt.Errorf("failed to decode ledger records: %w", err)}
	}

	records := make([]ledger.Record, 0, len(docs))
	for _, d := range docs {
		r, err := d.toRecord()
		if err != nil {
			return nil, ledger.StorageError{Op: "list", Err: err}
		}
		records = append(records, r)
	}
	return records, nil
}

// Compile-time check
var _ ledger.EventStore = (*EventStore)(nil)
