package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000"

// Tracer returns the package tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// AnalysisMetrics records outcomes of calls to the external analysis
// capability. Instruments come from the global MeterProvider and are no-ops
// until one is installed.
type AnalysisMetrics struct {
	calls    metric.Int64Counter
	cacheHit metric.Int64Counter
	latency  metric.Float64Histogram
}

func NewAnalysisMetrics() *AnalysisMetrics {
	m := otel.Meter(instrumentationName)
	calls, _ := m.Int64Counter("decision.analysis.calls",
		metric.WithDescription("External analysis calls by stage, provider and outcome"),
	)
	hits, _ := m.Int64Counter("decision.analysis.cache_hits",
		metric.WithDescription("Analysis requests served from stored output"),
	)
	latency, _ := m.Float64Histogram("decision.analysis.duration",
		metric.WithDescription("External analysis call duration"),
		metric.WithUnit("ms"),
	)
	return &AnalysisMetrics{calls: calls, cacheHit: hits, latency: latency}
}

func (m *AnalysisMetrics) ObserveCall(ctx context.Context, stage, provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	if m.calls != nil {
		m.calls.Add(ctx, 1, attrs)
	}
	if m.latency != nil {
		m.latency.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}

func (m *AnalysisMetrics) ObserveCacheHit(ctx context.Context, stage string) {
	if m == nil || m.cacheHit == nil {
		return
	}
	m.cacheHit.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// HTTPMetrics records API request counts, latency and in-flight requests.
type HTTPMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

func NewHTTPMetrics() *HTTPMetrics {
	m := otel.Meter(instrumentationName)
	requests, _ := m.Int64Counter("http.server.requests",
		metric.WithDescription("API requests by method, route and status"),
	)
	latency, _ := m.Float64Histogram("http.server.duration",
		metric.WithDescription("API request duration"),
		metric.WithUnit("ms"),
	)
	inflight, _ := m.Int64UpDownCounter("http.server.inflight",
		metric.WithDescription("API requests currently being served"),
	)
	return &HTTPMetrics{requests: requests, latency: latency, inflight: inflight}
}

func (m *HTTPMetrics) InflightAdd(ctx context.Context, n int64) {
	if m == nil || m.inflight == nil {
		return
	}
	m.inflight.Add(ctx, n)
}

func (m *HTTPMetrics) ObserveRequest(ctx context.Context, method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", status),
	)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.latency != nil {
		m.latency.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}
