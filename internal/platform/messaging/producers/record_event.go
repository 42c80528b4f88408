package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// RecordedEventType is carried in the event-type header of every ledger event
const RecordedEventType = "ledger.record.recorded"

// RecordedEvent announces a record that was durably written to the ledger
type RecordedEvent struct {
	EventID       string              `json:"event_id"`
	RecordID      string              `json:"record_id"`
	Kind          shared.RecordKind   `json:"kind"`
	Direction     shared.Direction    `json:"direction"`
	Amount        decimal.Decimal     `json:"amount"`
	Counterparty  string              `json:"counterparty"`
	Category      shared.Category     `json:"category"`
	Status        shared.RecordStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	OccurredAt    time.Time           `json:"occurred_at"`
	CorrelationID string              `json:"correlation_id,omitempty"`
}

// NewRecordedEvent builds the event for rec
func NewRecordedEvent(rec *ledger.Record, correlationID string) RecordedEvent {
	return RecordedEvent{
		EventID:       uuid.NewString(),
		RecordID:      rec.ID,
		Kind:          rec.Kind,
		Direction:     rec.Direction,
		Amount:        rec.Amount,
		Counterparty:  rec.Counterparty,
		Category:      rec.Category,
		Status:        rec.Status,
		CreatedAt:     rec.CreatedAt,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// RecordEventProducer writes ledger events to the ledger topic, keyed by record ID
type RecordEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewRecordEventProducer ensures the ledger topic exists and opens a writer for it
func NewRecordEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*RecordEventProducer, error) {
	if cfg.LedgerTopic == "" {
		return nil, fmt.Errorf("kafka ledger topic is not configured")
	}

	dialer := &kafka.Dialer{Timeout: cfg.WriteTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for ledger producer: %w", err)
	}
	defer conn.Close()

	err = ensureLedgerTopic(ctx, conn, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure ledger topic %s exists: %w", cfg.LedgerTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.LedgerTopic,
		Balancer:     &kafka.Hash{}, // same record ID lands on the same partition
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &RecordEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LedgerTopic,
	}, nil
}

func (p *RecordEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(RecordedEventType)},
		},
	}
	if ev, ok := value.(RecordedEvent); ok && ev.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "correlation-id", Value: []byte(ev.CorrelationID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *RecordEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
