package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the diary pipeline.
type Metrics struct {
	LinesRead       prometheus.Counter
	RecordsProduced prometheus.Counter
	LinesSkipped    *prometheus.CounterVec // labels: reason={blank,not_entry,malformed}
	DatesParsed     *prometheus.CounterVec // labels: status={single,range,raw}
	SinkErrors      prometheus.Counter
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram

	// Water-data enrichment metrics.
	WaterLookups *prometheus.CounterVec // labels: tier={daily,instantaneous,none,failed,skipped}
	WaterCache   *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "lines_read_total",
			Help:      "Total lines read from the diary file.",
		}),
		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "records_produced_total",
			Help:      "Total diary records written to the sinks.",
		}),
		LinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "lines_skipped_total",
			Help:      "Lines that produced no record, by reason.",
		}, []string{"reason"}),
		DatesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "dates_parsed_total",
			Help:      "Record dates by normalization outcome.",
		}, []string{"status"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "sink_errors_total",
			Help:      "Total failed sink batch writes, including retried ones.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fishing_diary",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fishing_diary",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete read-parse-load run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		WaterLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "water_lookups_total",
			Help:      "Water-data lookups by result tier.",
		}, []string{"tier"}),
		WaterCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fishing_diary",
			Name:      "water_cache_total",
			Help:      "Water-data cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.LinesRead,
		m.RecordsProduced,
		m.LinesSkipped,
		m.DatesParsed,
		m.SinkErrors,
		m.PipelineRunning,
		m.RunDuration,
		m.WaterLookups,
		m.WaterCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LinesRead:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "lines_read_total"}),
		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "records_produced_total"}),
		LinesSkipped:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "lines_skipped_total"}, []string{"reason"}),
		DatesParsed:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "dates_parsed_total"}, []string{"status"}),
		SinkErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "sink_errors_total"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fishing_diary", Name: "pipeline_running"}),
		RunDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fishing_diary", Name: "run_duration_seconds"}),
		WaterLookups:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "water_lookups_total"}, []string{"tier"}),
		WaterCache:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fishing_diary", Name: "water_cache_total"}, []string{"result"}),
	}
}
