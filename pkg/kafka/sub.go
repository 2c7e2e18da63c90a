package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"nexnews/repository"
)

// Consumer reads raw articles off the topic and hands them to the
// ingestion pipeline.
type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(broker, topic, groupID string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  1 * time.Second,
	})
	return &Consumer{reader: reader, logger: logger}
}

// Run consumes until ctx is cancelled. Malformed messages are committed
// and skipped so a poison message cannot wedge the partition.
func (c *Consumer) Run(ctx context.Context, handle func(context.Context, repository.RawArticle)) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer shutting down")
				return
			}
			c.logger.Error("fetch message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var raw repository.RawArticle
		if err := json.Unmarshal(msg.Value, &raw); err != nil {
			c.logger.Error("unmarshal raw article",
				zap.Error(err),
				zap.ByteString("value", msg.Value))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("commit offset after unmarshal error", zap.Error(err))
			}
			continue
		}

		handle(ctx, raw)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit offset", zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
