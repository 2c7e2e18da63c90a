package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"nexnews/repository"
)

// Producer publishes raw article tuples for the ingestor to consume.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a producer for the raw-article topic and verifies
// the broker is reachable.
func NewProducer(broker, topic string) (*Producer, error) {
	if broker == "" {
		return nil, fmt.Errorf("kafka broker cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}
	conn.Close()

	return &Producer{writer: writer, topic: topic}, nil
}

// PublishArticle sends one raw article, keyed by URL so retries of the
// same article land on the same partition.
func (p *Producer) PublishArticle(ctx context.Context, raw repository.RawArticle) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(raw.URL),
		Value: payload,
		Time:  time.Now(),
	}

	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(wctx, message); err != nil {
		return fmt.Errorf("failed to publish article to topic %s: %w", p.topic, err)
	}
	return nil
}

// Close gracefully closes the writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
