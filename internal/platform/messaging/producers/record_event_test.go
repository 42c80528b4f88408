package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testRecord() *ledger.Record {
	return &ledger.Record{
		ID:           "TXN_0193",
		Kind:         shared.RecordKindTransfer,
		Direction:    shared.DirectionOutgoing,
		Amount:       decimal.NewFromInt(5000),
		Counterparty: "Ada",
		Category:     shared.CategoryTransfer,
		Status:       shared.RecordStatusCompleted,
		CreatedAt:    time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewRecordedEvent(t *testing.T) {
	rec := testRecord()
	ev := NewRecordedEvent(rec, "corr-1")

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, rec.ID, ev.RecordID)
	assert.Equal(t, rec.Kind, ev.Kind)
	assert.True(t, rec.Amount.Equal(ev.Amount))
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.False(t, ev.OccurredAt.IsZero())

	other := NewRecordedEvent(rec, "corr-1")
	assert.NotEqual(t, ev.EventID, other.EventID)
}

func TestRecordEventProducer_Publish(t *testing.T) {
	logger := newTestLogger()
	topic := "test-ledger-records"
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &RecordEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		ev := NewRecordedEvent(testRecord(), "corr-42")
		expectedJSONValue, _ := json.Marshal(ev)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			return string(msg.Key) == ev.RecordID &&
				string(msg.Value) == string(expectedJSONValue) &&
				len(msg.Headers) == 2 &&
				string(msg.Headers[0].Value) == RecordedEventType &&
				string(msg.Headers[1].Value) == "corr-42"
		})).Return(nil).Once()

		err := producer.Publish(ctx, ev.RecordID, ev)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PlainValueHasOnlyEventTypeHeader", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &RecordEventProducer{logger: logger, writer: mockWriter, topic: topic}

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 && len(msgs[0].Headers) == 1
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, "k", map[string]string{"data": "x"}))
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &RecordEventProducer{logger: logger, writer: mockWriter, topic: topic}
		writerError := errors.New("kafka write error")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, "TXN_1", NewRecordedEvent(testRecord(), ""))
		require.Error(t, err)
		assert.ErrorIs(t, err, writerError)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnMarshalError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &RecordEventProducer{logger: logger, writer: mockWriter, topic: topic}

		err := producer.Publish(ctx, "bad", make(chan int))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to marshal ledger event")
		mockWriter.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})
}

func TestRecordEventProducer_Close(t *testing.T) {
	logger := newTestLogger()

	t.Run("SuccessfulClose", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &RecordEventProducer{logger: logger, writer: mockWriter, topic: "t"}
		mockWriter.On("Close").Return(nil).Once()

		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("CloseReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &RecordEventProducer{logger: logger, writer: mockWriter, topic: "t"}
		closeError := errors.New("kafka close error")
		mockWriter.On("Close").Return(closeError).Once()

		err := producer.Close()
		assert.ErrorIs(t, err, closeError)
		mockWriter.AssertExpectations(t)
	})
}
