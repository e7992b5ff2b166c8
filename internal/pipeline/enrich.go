package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/couchcryptid/fishing-diary-etl/internal/observability"
)

// WaterEnricher implements Enricher using the tiered domain water lookup.
type WaterEnricher struct {
	service domain.WaterService
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWaterEnricher creates a WaterEnricher. A nil service marks every
// reading as skipped.
func NewWaterEnricher(service domain.WaterService, logger *slog.Logger, metrics *observability.Metrics) *WaterEnricher {
	return &WaterEnricher{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Enrich returns one reading per record, in record order. If ctx is
// cancelled it stops early and drops the reading that was in flight, so the
// result is shorter than records.
func (e *WaterEnricher) Enrich(ctx context.Context, records []domain.DiaryRecord) []domain.WaterReading {
	readings := make([]domain.WaterReading, 0, len(records))
	for _, rec := range records {
		var r domain.WaterReading
		if ctx.Err() == nil {
			r = domain.LookupWaterData(ctx, rec, e.service, e.logger)
		}
		// A lookup cut short by cancellation says nothing about the station.
		if ctx.Err() != nil {
			e.logger.Warn("water enrichment interrupted", "remaining", len(records)-len(readings))
			break
		}
		e.metrics.WaterLookups.WithLabelValues(string(r.Tier)).Inc()
		readings = append(readings, r)
	}
	return readings
}
