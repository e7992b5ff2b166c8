package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxParseWorkers = 64

// Config holds all service settings, populated from environment variables.
type Config struct {
	DiaryPath       string
	OutputPath      string
	DefaultLocation string
	VocabularyFile  string
	ParseWorkers    int
	BatchSize       int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Water-data enrichment configuration.
	WaterEnabled    bool
	WaterOutputPath string
	WaterBaseURL    string
	WaterTimeout    time.Duration
	WaterCacheSize  int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	waterTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("WATER_TIMEOUT", "30s"))
	if err != nil || waterTimeout <= 0 {
		return nil, errors.New("invalid WATER_TIMEOUT")
	}

	cfg := &Config{
		DiaryPath:       sharedcfg.EnvOrDefault("DIARY_PATH", "docs/spring_river_fishing_diary.md"),
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", "diary_entries.json"),
		DefaultLocation: sharedcfg.EnvOrDefault("DEFAULT_LOCATION", "Spring River"),
		VocabularyFile:  os.Getenv("VOCABULARY_FILE"),
		ParseWorkers:    workers,
		BatchSize:       batchSize,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "fishing-diary-entries"),

		WaterEnabled:    os.Getenv("WATER_ENABLED") == "true",
		WaterOutputPath: sharedcfg.EnvOrDefault("WATER_OUTPUT_PATH", "water_readings.json"),
		WaterBaseURL:    sharedcfg.EnvOrDefault("WATER_BASE_URL", "https://waterservices.usgs.gov/nwis"),
		WaterTimeout:    waterTimeout,
		WaterCacheSize:  parseWaterCacheSize(),
	}

	if cfg.DiaryPath == "" {
		return nil, errors.New("DIARY_PATH is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseWorkers() (int, error) {
	s := sharedcfg.EnvOrDefault("PARSE_WORKERS", "1")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxParseWorkers {
		return 0, fmt.Errorf("invalid PARSE_WORKERS %q: must be between 1 and %d", s, maxParseWorkers)
	}
	return n, nil
}

func parseWaterCacheSize() int {
	if s := os.Getenv("WATER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
