package producers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/personal-finance-ledger/internal/config"
)

// topicAdmin is the part of *kafka.Conn used to provision the ledger topic
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// ensureLedgerTopic creates the ledger topic when no partitions can be read for it.
// Partition reads are retried TopicCheckAttempts times, TopicCheckBackoff apart.
func ensureLedgerTopic(ctx context.Context, admin topicAdmin, cfg *config.KafkaConfig, log *slog.Logger) error {
	topic := cfg.LedgerTopic
	attempts := max(cfg.TopicCheckAttempts, 1)

	var partitions []kafka.Partition
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		partitions, err = admin.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			log.Info("Ledger topic already exists", "topic", topic, "partitions", len(partitions))
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Warn("Ledger topic not readable yet, retrying", "topic", topic, "attempt", attempt, "error", err)
		if waitErr := sleepCtx(ctx, cfg.TopicCheckBackoff); waitErr != nil {
			return fmt.Errorf("gave up waiting for ledger topic %s: %w", topic, waitErr)
		}
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(cfg.NumPartitions, 1),
		ReplicationFactor: max(cfg.ReplicationFactor, 1),
	}
	log.Info("Creating ledger topic", "topic", topic,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor,
		"last_read_error", err)

	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	log.Info("Created ledger topic", "topic", topic)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
