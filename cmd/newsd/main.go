package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"nexnews/api"
	"nexnews/classify"
	"nexnews/collector"
	"nexnews/config"
	"nexnews/embedding"
	"nexnews/ingest"
	"nexnews/pkg/kafka"
	"nexnews/pkg/memstore"
	"nexnews/pkg/postgres"
	qdrantClient "nexnews/pkg/qdrantdb"
	"nexnews/repository"
	"nexnews/search"
)

func main() {
	ctx := context.Background()

	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	feeds := config.LoadFeeds(cfg.FeedsFilePath)

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Relational store
	// =========
	var store repository.ArticleStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.NewArticleStore(ctx, cfg.DatabaseURL, cfg.MigrationsPath)
		if err != nil {
			log.Fatalf("Failed to initialize postgres: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Warn("no DATABASE_URL set, using in-memory article store")
		store = memstore.NewArticleStore()
	}

	// =========
	// Vector index
	// =========
	var vectors repository.ArticleVectorRepo
	if cfg.QdrantHost != "" {
		qdb, err := qdrantClient.NewClient(cfg.QdrantHost, cfg.QdrantPort)
		if err != nil {
			log.Fatalf("Failed to initialize qdrant: %v", err)
		}
		if err := qdb.CreateArticleCollection(ctx); err != nil {
			log.Fatalf("Failed to create article collection: %v", err)
		}
		vectors = qdb
	} else {
		logger.Warn("no QDRANT_HOST set, using in-memory vector index")
		vectors = memstore.NewVectorIndex()
	}

	// =========
	// Classifier and embedder
	// =========
	var classifier classify.Client
	if cfg.OpenAIAPIKey != "" {
		classifier = classify.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn("no OPENAI_API_KEY set, classifications will be randomized")
		classifier = classify.NewMockClassifier()
	}
	embedder := embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey)

	// =========
	// Pipeline and retrieval engine
	// =========
	pipeline := ingest.NewPipeline(store, vectors, classifier, embedder, logger.With(zap.String("component", "pipeline")))
	engine := search.NewEngine(store, vectors, embedder, logger.With(zap.String("component", "search")))

	// =========
	// Startup reconciliation
	// =========
	recomputed := pipeline.Reconcile(ctx)
	logger.Info("startup reconcile finished", zap.Int("recomputed", recomputed))

	// =========
	// Feed collector loop
	// =========
	var seen *collector.SeenTracker
	if cfg.SeenDBPath != "" {
		seen, err = collector.OpenSeenTracker(cfg.SeenDBPath)
		if err != nil {
			log.Fatalf("Failed to open seen tracker: %v", err)
		}
		defer seen.Close()
	}
	feedCollector := collector.New(feeds, seen, logger.With(zap.String("component", "collector")))

	go func() {
		interval := time.Duration(cfg.IngestInterval) * time.Minute
		logger.Info("starting ingestion loop", zap.Duration("interval", interval))

		runCycle(ctx, feedCollector, pipeline, logger)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			runCycle(ctx, feedCollector, pipeline, logger)
		}
	}()

	// =========
	// Kafka consumer (external collectors)
	// =========
	if cfg.KafkaBroker != "" {
		consumer := kafka.NewConsumer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID,
			logger.With(zap.String("component", "kafka")))
		defer consumer.Close()
		go consumer.Run(ctx, func(ctx context.Context, raw repository.RawArticle) {
			pipeline.Ingest(ctx, []repository.RawArticle{raw})
		})
	}

	// =========
	// HTTP API
	// =========
	server := api.NewServer(engine, pipeline, logger.With(zap.String("component", "api")), cfg.AppPort)
	log.Fatal(server.Start())
}

func runCycle(ctx context.Context, c *collector.Collector, p *ingest.Pipeline, logger *zap.Logger) {
	start := time.Now()
	raws := c.Collect(ctx)
	stored := p.Ingest(ctx, raws)
	logger.Info("ingestion cycle finished",
		zap.Int("collected", len(raws)),
		zap.Int("stored", stored),
		zap.Duration("elapsed", time.Since(start)))
}
