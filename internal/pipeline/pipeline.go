package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/couchcryptid/fishing-diary-etl/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// LineSource reads every raw line of a diary.
type LineSource interface {
	ReadLines(ctx context.Context) ([]string, error)
}

// BatchLoader writes a batch of items to a destination.
type BatchLoader[T any] interface {
	LoadBatch(ctx context.Context, items []T) error
}

// Enricher looks up supplementary data for parsed records.
type Enricher interface {
	Enrich(ctx context.Context, records []domain.DiaryRecord) []domain.WaterReading
}

const (
	defaultBatchSize      = 50
	defaultMaxAttempts    = 5
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

// Summary describes the outcome of one run.
type Summary struct {
	LinesRead     int
	Records       int
	Skipped       map[domain.SkipReason]int
	WaterReadings int
	Duration      time.Duration
}

// Pipeline orchestrates the read-parse-load run.
type Pipeline struct {
	source   LineSource
	parser   *domain.Parser
	loader   BatchLoader[domain.DiaryRecord]
	enricher Enricher
	readings BatchLoader[domain.WaterReading]
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	batchSize      int
	workers        int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBatchSize sets how many records are handed to the loader at once.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithWorkers sets the number of parse workers. Values below 2 parse sequentially.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithWaterEnrichment enables the water-data pass. Readings are written to
// their own loader, separate from the records.
func WithWaterEnrichment(e Enricher, readings BatchLoader[domain.WaterReading]) Option {
	return func(p *Pipeline) {
		p.enricher = e
		p.readings = readings
	}
}

// WithRetry overrides the sink retry policy.
func WithRetry(maxAttempts int, initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.maxAttempts = max(maxAttempts, 1)
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
	}
}

// New creates a Pipeline with the given stages and observability.
func New(source LineSource, parser *domain.Parser, loader BatchLoader[domain.DiaryRecord], logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:         source,
		parser:         parser,
		loader:         loader,
		logger:         logger,
		metrics:        metrics,
		batchSize:      defaultBatchSize,
		workers:        1,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has completed a run,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run reads the diary, parses every line, and loads the records. A source
// error aborts before anything is loaded; a loader error aborts once the
// retry attempts are exhausted.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "workers", p.workers)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	lines, err := p.source.ReadLines(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("extract lines: %w", err)
	}
	p.metrics.LinesRead.Add(float64(len(lines)))

	res := p.parse(lines)
	summary := Summary{
		LinesRead: len(lines),
		Records:   len(res.Records),
		Skipped:   res.SkipCounts(),
	}

	if err := loadInBatches(ctx, p, p.loader, res.Records); err != nil {
		return summary, fmt.Errorf("load records: %w", err)
	}
	p.metrics.RecordsProduced.Add(float64(len(res.Records)))

	if p.enricher != nil && p.readings != nil {
		readings := p.enricher.Enrich(ctx, res.Records)
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("water enrichment: %w", err)
		}
		if err := loadInBatches(ctx, p, p.readings, readings); err != nil {
			return summary, fmt.Errorf("load water readings: %w", err)
		}
		summary.WaterReadings = len(readings)
	}

	summary.Duration = time.Since(start)
	p.metrics.RunDuration.Observe(summary.Duration.Seconds())
	p.ready.Store(true)

	p.logger.Info("pipeline finished",
		"lines", summary.LinesRead,
		"records", summary.Records,
		"skipped", len(res.Skipped),
		"water_readings", summary.WaterReadings,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (p *Pipeline) parse(lines []string) domain.Result {
	var res domain.Result
	if p.workers > 1 {
		res = p.parser.ParseLinesParallel(lines, p.workers)
	} else {
		res = p.parser.ParseLines(lines)
	}

	for _, s := range res.Skipped {
		p.metrics.LinesSkipped.WithLabelValues(string(s.Reason)).Inc()
		if s.Reason != domain.ReasonBlank {
			p.logger.Debug("line skipped", "line", s.Line, "reason", s.Reason)
		}
	}
	for _, rec := range res.Records {
		p.metrics.DatesParsed.WithLabelValues(string(rec.DateStatus)).Inc()
		if rec.DateStatus == domain.DateRaw {
			p.logger.Debug("date kept as raw text", "record_id", rec.ID, "date", rec.Date)
		}
	}
	return res
}

// loadInBatches hands items to loader in batchSize chunks, retrying each
// failed chunk with exponential backoff.
func loadInBatches[T any](ctx context.Context, p *Pipeline, loader BatchLoader[T], items []T) error {
	for start := 0; start < len(items); start += p.batchSize {
		end := min(start+p.batchSize, len(items))
		if err := p.loadWithRetry(ctx, len(items[start:end]), func() error {
			return loader.LoadBatch(ctx, items[start:end])
		}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) loadWithRetry(ctx context.Context, size int, load func() error) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = load(); err == nil {
			return nil
		}
		p.metrics.SinkErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", size, "attempt", attempt)

		if attempt == p.maxAttempts {
			break
		}
		// SleepWithContext does not look at ctx for a zero backoff.
		if ctx.Err() != nil || !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("giving up after %d attempts: %w", p.maxAttempts, err)
}
