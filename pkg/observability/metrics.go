// Package observability provides Prometheus metrics and OpenTelemetry spans
// for ledger loads and report runs.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
)

// Namespace prefixes every metric name.
const Namespace = "tmsledger"

// LedgerMetrics holds the metrics for one CLI run. It implements
// ledger.Observer.
type LedgerMetrics struct {
	// Parser metrics
	LinesTotal        *prometheus.CounterVec
	SkippedLinesTotal *prometheus.CounterVec
	ParseErrorsTotal  *prometheus.CounterVec

	// Ledger contents
	Meetings prometheus.Gauge
	Talks    prometheus.Gauge
	Speakers prometheus.Gauge

	// Timings
	LoadSeconds   prometheus.Histogram
	RenderSeconds *prometheus.HistogramVec
}

var _ ledger.Observer = (*LedgerMetrics)(nil)

// NewLedgerMetrics creates the metrics and registers them with reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	factory := promauto.With(reg)

	meetings := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "meetings",
		Help:      "Meetings in the loaded ledger",
	})
	talks := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "talks",
		Help:      "Talks in the loaded ledger",
	})
	speakers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "distinct_speakers",
		Help:      "Distinct speaker strings in the loaded ledger",
	})

	return &LedgerMetrics{
		LinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "lines_total",
				Help:      "Ledger lines read, by kind",
			},
			[]string{"kind"},
		),
		SkippedLinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "skipped_lines_total",
				Help:      "Ledger lines skipped, by reason",
			},
			[]string{"reason"},
		),
		ParseErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "parse_errors_total",
				Help:      "Fatal parse errors, by error code",
			},
			[]string{"code"},
		),

		Meetings: meetings,
		Talks:    talks,
		Speakers: speakers,

		LoadSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "load_seconds",
			Help:      "Time to read and parse the ledger",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		RenderSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "render_seconds",
				Help:      "Time to produce a report",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"report"},
		),
	}
}

// ObserveLine counts a parsed line.
func (m *LedgerMetrics) ObserveLine(kind ledger.LineKind, reason ledger.SkipReason) {
	m.LinesTotal.WithLabelValues(string(kind)).Inc()
	if kind == ledger.LineSkipped {
		m.SkippedLinesTotal.WithLabelValues(string(reason)).Inc()
	}
}

// ObserveError counts a parse error.
func (m *LedgerMetrics) ObserveError(code lerrors.ErrorCode) {
	m.ParseErrorsTotal.WithLabelValues(string(code)).Inc()
}

// RecordSummary sets the ledger content gauges.
func (m *LedgerMetrics) RecordSummary(s ledger.Summary) {
	m.Meetings.Set(float64(s.Meetings))
	m.Talks.Set(float64(s.Talks))
	m.Speakers.Set(float64(s.Distinct))
}

// RecordLoad records the duration of a ledger load.
func (m *LedgerMetrics) RecordLoad(seconds float64) {
	m.LoadSeconds.Observe(seconds)
}

// RecordRender records the duration of a report.
func (m *LedgerMetrics) RecordRender(report string, seconds float64) {
	m.RenderSeconds.WithLabelValues(report).Observe(seconds)
}

// WriteTextfile writes everything gathered from g to path in the Prometheus
// text format, for the node exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
