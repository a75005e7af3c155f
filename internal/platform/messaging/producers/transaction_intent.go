package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/corebank-ledger/internal/config"
)

// IntentProducer publishes transaction intents for the worker to execute.
type IntentProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewIntentProducer creates the gateway-side producer and ensures the intent
// topic exists.
func NewIntentProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*IntentProducer, error) {
	if cfg.IntentTopic == "" {
		return nil, fmt.Errorf("kafka intent topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for intent producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.IntentTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure intent topic %s exists: %w", cfg.IntentTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.IntentTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.IntentTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.IntentTopic, "count", len(messages))
			}
		},
	}

	return &IntentProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.IntentTopic,
	}, nil
}

// Publish serializes the intent as JSON and writes it keyed by the account ID
// so all intents for one account land on the same partition in order.
func (p *IntentProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal intent message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish intent message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish intent message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published intent message",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *IntentProducer) Close() error {
	p.logger.Info("Closing intent Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
