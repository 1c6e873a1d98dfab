package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/config"
	"github.com/segmentio/kafka-go"
)

// ReceiptMessageProducer publishes committed wallet receipts to the receipt topic
type ReceiptMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewReceiptMessageProducer creates the receipt producer and ensures the topic exists
func NewReceiptMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ReceiptMessageProducer, error) {
	if cfg.ReceiptTopic == "" {
		return nil, fmt.Errorf("kafka receipt topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for receipt producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ReceiptTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure receipt topic %s exists: %w", cfg.ReceiptTopic, err)
	}

	return &ReceiptMessageProducer{
		logger: logger,
		writer: newReceiptWriter(cfg),
		topic:  cfg.ReceiptTopic,
	}, nil
}

// newReceiptWriter builds the topic writer. Synchronous writes: the poller
// marks an outbox row PROCESSED only after the broker acknowledged the receipt.
// The hash balancer routes every message with the same user-id key to the same
// partition, which keeps one user's receipts in order.
func newReceiptWriter(cfg *config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ReceiptTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}
}

// Publish sends a receipt to the receipt topic, keyed so all receipts of one
// user land on the same partition
func (p *ReceiptMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt message value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish receipt message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish receipt message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published receipt message",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ReceiptMessageProducer) Close() error {
	p.logger.Info("Closing receipt Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close receipt kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
