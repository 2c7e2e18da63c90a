package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config carries all runtime settings. Postgres and qdrant are optional;
// when unset the service falls back to the in-memory stores.
type Config struct {
	AppPort        int
	DatabaseURL    string
	MigrationsPath string
	QdrantHost     string
	QdrantPort     int
	OpenAIAPIKey   string
	OpenAIModel    string
	IngestInterval int // minutes
	KafkaBroker    string
	KafkaTopic     string
	KafkaGroupID   string
	SeenDBPath     string
	FeedsFilePath  string
}

func Load() (*Config, error) {
	appPort, err := strconv.Atoi(getEnvDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}
	qdrantPort, err := strconv.Atoi(getEnvDefault("QDRANT_PORT", "6334"))
	if err != nil {
		return nil, err
	}
	interval, err := strconv.Atoi(getEnvDefault("INGEST_INTERVAL_MINUTES", "10"))
	if err != nil {
		return nil, err
	}

	return &Config{
		AppPort:        appPort,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnvDefault("MIGRATIONS_PATH", "file://migrations"),
		QdrantHost:     os.Getenv("QDRANT_HOST"),
		QdrantPort:     qdrantPort,
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		IngestInterval: interval,
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		KafkaTopic:     getEnvDefault("KAFKA_TOPIC", "raw_articles"),
		KafkaGroupID:   getEnvDefault("KAFKA_GROUP_ID", "nexnews-ingestor"),
		SeenDBPath:     os.Getenv("SEEN_DB_PATH"),
		FeedsFilePath:  os.Getenv("FEEDS_FILE"),
	}, nil
}

// DefaultFeeds are polled when no feeds file is configured. Public RSS
// only, no API keys required.
var DefaultFeeds = []string{
	"https://www.reddit.com/r/sysadmin/new.rss",
	"https://feeds.arstechnica.com/arstechnica/index",
	"https://www.tomshardware.com/feeds/all",
}

// LoadFeeds reads the YAML feed list at path; an empty path or unreadable
// file falls back to DefaultFeeds.
func LoadFeeds(path string) []string {
	if path == "" {
		return DefaultFeeds
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: cannot read feeds file %s: %v (using defaults)", path, err)
		return DefaultFeeds
	}

	var feeds []string
	if err := yaml.Unmarshal(raw, &feeds); err != nil {
		log.Printf("config: cannot parse feeds file %s: %v (using defaults)", path, err)
		return DefaultFeeds
	}
	if len(feeds) == 0 {
		return DefaultFeeds
	}
	return feeds
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
