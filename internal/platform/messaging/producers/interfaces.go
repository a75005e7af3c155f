package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher publishes transaction intents onto the intents topic. The
// key is the account ID so all intents for one account land on the same
// partition and process in order.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}

// DeadLetterPublisher parks undecodable intent payloads on the dead letter
// topic together with the failure reason.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is the slice of kafka.Writer the producers use, extracted so
// tests can substitute a fake.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
