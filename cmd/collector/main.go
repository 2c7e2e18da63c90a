package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"nexnews/collector"
	"nexnews/config"
	"nexnews/pkg/kafka"
)

// Standalone feed collector: polls the configured feeds and publishes raw
// articles to Kafka for the ingestor service to consume.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.KafkaBroker == "" {
		log.Fatal("KAFKA_BROKER is required for the standalone collector")
	}
	feeds := config.LoadFeeds(cfg.FeedsFilePath)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	producer, err := kafka.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
	if err != nil {
		log.Fatalf("Failed to create kafka producer: %v", err)
	}
	defer producer.Close()

	var seen *collector.SeenTracker
	if cfg.SeenDBPath != "" {
		seen, err = collector.OpenSeenTracker(cfg.SeenDBPath)
		if err != nil {
			log.Fatalf("Failed to open seen tracker: %v", err)
		}
		defer seen.Close()
	}

	feedCollector := collector.New(feeds, seen, logger.With(zap.String("component", "collector")))

	interval := time.Duration(cfg.IngestInterval) * time.Minute
	logger.Info("collector started",
		zap.Int("feeds", len(feeds)),
		zap.Duration("interval", interval))

	publish := func() {
		raws := feedCollector.Collect(ctx)
		published := 0
		for _, raw := range raws {
			if err := producer.PublishArticle(ctx, raw); err != nil {
				logger.Error("publish article",
					zap.String("url", raw.URL),
					zap.Error(err))
				continue
			}
			published++
		}
		logger.Info("publish cycle finished",
			zap.Int("collected", len(raws)),
			zap.Int("published", published))
	}

	publish()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		publish()
	}
}
