package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/chris-regnier/quill/internal/metrics"

// Recorder records analysis events into a Collector and the global
// OpenTelemetry meter provider.
type Recorder struct {
	collector *Collector

	duration metric.Float64Histogram
	issues   metric.Int64Counter
	runs     metric.Int64Counter
}

// NewRecorder creates a recorder whose instruments belong to the global
// meter provider.
func NewRecorder(collector *Collector) *Recorder {
	meter := otel.Meter(instrumentationName)

	r := &Recorder{collector: collector}
	r.duration, _ = meter.Float64Histogram("quill.analysis.duration",
		metric.WithDescription("Duration of one analysis call"),
		metric.WithUnit("ms"))
	r.issues, _ = meter.Int64Counter("quill.analysis.issues",
		metric.WithDescription("Issues reported, by severity"))
	r.runs, _ = meter.Int64Counter("quill.analysis.runs",
		metric.WithDescription("Analysis calls, by outcome"))
	return r
}

// NoOpRecorder returns a recorder that keeps no events.
func NoOpRecorder() *Recorder {
	return NewRecorder(NewCollector(WithMaxEvents(0)))
}

// Collector returns the underlying collector.
func (r *Recorder) Collector() *Collector {
	return r.collector
}

// AnalysisBuilder accumulates one event. It is not safe for concurrent use.
type AnalysisBuilder struct {
	recorder *Recorder
	event    AnalysisEvent
	started  time.Time
}

// StartAnalysis begins recording an analysis of the given language.
func (r *Recorder) StartAnalysis(language string) *AnalysisBuilder {
	now := r.collector.now()
	return &AnalysisBuilder{
		recorder: r,
		event: AnalysisEvent{
			ID:          uuid.NewString(),
			Timestamp:   now,
			Language:    language,
			CacheResult: CacheDisabled,
		},
		started: now,
	}
}

// WithSource records the size of the analyzed text.
func (b *AnalysisBuilder) WithSource(text string) *AnalysisBuilder {
	b.event.SourceSize = len(text)
	b.event.LineCount = strings.Count(text, "\n") + 1
	return b
}

// WithCacheResult records the cache lookup outcome.
func (b *AnalysisBuilder) WithCacheResult(result CacheResult) *AnalysisBuilder {
	b.event.CacheResult = result
	return b
}

// Complete finishes a successful analysis. bySeverity maps severity names
// to issue counts.
func (b *AnalysisBuilder) Complete(ctx context.Context, bySeverity map[string]int) {
	for severity, n := range bySeverity {
		b.event.IssueCount += n
		if severity == "error" {
			b.event.ErrorCount += n
		}
		if n > 0 {
			b.recorder.issues.Add(ctx, int64(n), metric.WithAttributes(
				attribute.String("quill.language", b.event.Language),
				attribute.String("quill.severity", severity),
			))
		}
	}
	b.finish(ctx, "ok")
}

// CompleteWithError finishes a failed analysis.
func (b *AnalysisBuilder) CompleteWithError(ctx context.Context, err error) {
	b.event.Error = err.Error()
	b.finish(ctx, "error")
}

func (b *AnalysisBuilder) finish(ctx context.Context, outcome string) {
	b.event.Duration = b.recorder.collector.now().Sub(b.started)

	attrs := metric.WithAttributes(
		attribute.String("quill.language", b.event.Language),
		attribute.String("quill.outcome", outcome),
		attribute.String("quill.cache", string(b.event.CacheResult)),
	)
	b.recorder.duration.Record(ctx, float64(b.event.Duration)/float64(time.Millisecond), attrs)
	b.recorder.runs.Add(ctx, 1, attrs)

	b.recorder.collector.Record(b.event)
}
