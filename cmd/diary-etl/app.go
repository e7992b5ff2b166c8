package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/file"
	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/fishing-diary-etl/internal/adapter/kafka"
	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/usgs"
	"github.com/couchcryptid/fishing-diary-etl/internal/config"
	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/couchcryptid/fishing-diary-etl/internal/observability"
	"github.com/couchcryptid/fishing-diary-etl/internal/pipeline"
)

// app holds the wired pipeline and the sinks that need finishing after a run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	parser   *domain.Parser
	pipeline *pipeline.Pipeline

	// flush writes buffered file output; only called after a successful run.
	flush []func() error
	// release frees connections; always called.
	release []func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	vocab, err := cfg.Vocabulary()
	if err != nil {
		return nil, err
	}
	parser := domain.NewParser(domain.WithVocabulary(vocab))

	a := &app{cfg: cfg, logger: logger, parser: parser}

	records := jsonfile.NewWriter[domain.DiaryRecord](cfg.OutputPath)
	a.flush = append(a.flush, records.Close)
	sinks := pipeline.FanOut[domain.DiaryRecord]{records}

	// Kafka publishing is feature-flagged via KAFKA_ENABLED.
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		a.release = append(a.release, writer.Close)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	opts := []pipeline.Option{
		pipeline.WithBatchSize(cfg.BatchSize),
		pipeline.WithWorkers(cfg.ParseWorkers),
	}

	// Water enrichment is feature-flagged via WATER_ENABLED.
	if cfg.WaterEnabled {
		client := usgs.NewClient(cfg.WaterBaseURL, cfg.WaterTimeout, logger)
		service := usgs.NewCachedService(client, cfg.WaterCacheSize, metrics)
		readings := jsonfile.NewWriter[domain.WaterReading](cfg.WaterOutputPath)
		a.flush = append(a.flush, readings.Close)
		opts = append(opts, pipeline.WithWaterEnrichment(pipeline.NewWaterEnricher(service, logger, metrics), readings))
		logger.Info("water enrichment enabled", "cache_size", cfg.WaterCacheSize, "timeout", cfg.WaterTimeout)
	} else {
		logger.Info("water enrichment disabled")
	}

	a.pipeline = pipeline.New(file.NewSource(cfg.DiaryPath), parser, sinks, logger, metrics, opts...)
	return a, nil
}

// finish flushes file output when the run succeeded and releases every sink.
func (a *app) finish(runErr error) error {
	var errs []error
	if runErr == nil {
		for _, fn := range a.flush {
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, fn := range a.release {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
