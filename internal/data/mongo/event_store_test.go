package mongo

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sampleRecord() *ledger.Record {
	return &ledger.Record{
		ID:           "TXN_0193a",
		Kind:         shared.RecordKindTransfer,
		Direction:    shared.DirectionOutgoing,
		Amount:       decimal.RequireFromString("5000.25"),
		Counterparty: "Ada Obi",
		Category:     shared.CategoryTransfer,
		Status:       shared.RecordStatusCompleted,
		CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Metadata:     ledger.Metadata{Description: "rent share"},
	}
}

func recordBSON(tb testing.TB, r *ledger.Record) bson.D {
	tb.Helper()
	amount, err := primitive.ParseDecimal128(r.Amount.String())
	require.NoError(tb, err)
	return bson.D{
		{Key: "_id", Value: r.ID},
		{Key: "kind", Value: string(r.Kind)},
		{Key: "direction", Value: string(r.Direction)},
		{Key: "amount", Value: amount},
		{Key: "counterparty", Value: r.Counterparty},
		{Key: "category", Value: string(r.Category)},
		{Key: "status", Value: string(r.Status)},
		{Key: "created_at", Value: r.CreatedAt},
		{Key: "metadata", Value: bson.D{{Key: "description", Value: r.Metadata.Description}}},
	}
}

func TestDocumentMapping(t *testing.T) {
	rec := sampleRecord()

	doc, err := toDocument(rec)
	require.NoError(t, err)
	assert.Equal(t, "5000.25", doc.Amount.String())
	assert.Equal(t, "TRANSFER", doc.Kind)

	back, err := doc.toRecord()
	require.NoError(t, err)
	assert.True(t, rec.Amount.Equal(back.Amount))
	assert.Equal(t, rec.Metadata, back.Metadata)
	assert.Equal(t, rec.CreatedAt, back.CreatedAt)
}

func TestEventStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "ledger." + RecordsCollectionName
	ctx := context.Background()

	mt.Run("put success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		store := NewEventStore(newTestLogger(), mt.DB)

		assert.NoError(mt, store.Put(ctx, sampleRecord()))
	})

	mt.Run("put duplicate id is conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		store := NewEventStore(newTestLogger(), mt.DB)

		err := store.Put(ctx, sampleRecord())
		assert.ErrorIs(mt, err, ledger.ConflictError{ID: "TXN_0193a"})
	})

	mt.Run("put command failure is storage error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Message: "shutdown in progress",
		}))
		store := NewEventStore(newTestLogger(), mt.DB)

		err := store.Put(ctx, sampleRecord())
		assert.ErrorIs(mt, err, ledger.StorageError{})
	})

	mt.Run("get found", func(mt *mtest.T) {
		rec := sampleRecord()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, recordBSON(mt, rec)))
		store := NewEventStore(newTestLogger(), mt.DB)

		got, err := store.Get(ctx, rec.ID)
		require.NoError(mt, err)
		assert.Equal(mt, rec.ID, got.ID)
		assert.True(mt, rec.Amount.Equal(got.Amount))
		assert.Equal(mt, "rent share", got.Metadata.Description)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		store := NewEventStore(newTestLogger(), mt.DB)

		got, err := store.Get(ctx, "TXN_missing")
		assert.Nil(mt, got)
		assert.ErrorIs(mt, err, ledger.NotFoundError{ID: "TXN_missing"})
	})

	mt.Run("get index missing is empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ledger."+IndexesCollectionName, mtest.FirstBatch))
		store := NewEventStore(newTestLogger(), mt.DB)

		records, err := store.GetIndex(ctx, ledger.RecentActivityKey)
		require.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})

	mt.Run("put index upserts", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 1},
			{Key: "nModified", Value: 0},
			{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: ledger.RecentActivityKey}}}},
		})
		store := NewEventStore(newTestLogger(), mt.DB)

		err := store.PutIndex(ctx, ledger.RecentActivityKey, []ledger.Record{*sampleRecord()})
		assert.NoError(mt, err)
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))
		store := NewEventStore(newTestLogger(), mt.DB)

		count, err := store.Count(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), count)
	})

	mt.Run("list", func(mt *mtest.T) {
		newer := sampleRecord()
		older := sampleRecord()
		older.ID = "TXN_0192f"
		older.CreatedAt = newer.CreatedAt.Add(-time.Hour)

		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, recordBSON(mt, newer))
		second := mtest.CreateCursorResponse(1, ns, mtest.NextBatch, recordBSON(mt, older))
		done := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, second, done)
		store := NewEventStore(newTestLogger(), mt.DB)

		records, err := store.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, newer.ID, records[0].ID)
		assert.Equal(mt, older.ID, records[1].ID)
	})
}
