package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/prodtrack/prodtrack/internal/api/middleware"

// Metrics holds the OpenTelemetry metrics instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			}
			m.requestsInFlight.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			defer m.requestsInFlight.Add(r.Context(), -1, metric.WithAttributes(attrs...))

			wrapped := newMetricsResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()

			attrs = append(attrs, attribute.String("http.status_code", strconv.Itoa(wrapped.statusCode)))
			if wrapped.statusCode >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			m.requestDuration.Record(r.Context(), duration, metric.WithAttributes(attrs...))
			m.requestTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			m.responseSize.Record(r.Context(), wrapped.written, metric.WithAttributes(attrs...))
		})
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture response metadata.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// AuthMetrics holds metrics for device authorization decisions.
type AuthMetrics struct {
	checkDuration metric.Float64Histogram
	checkTotal    metric.Int64Counter
	cacheHitRate  metric.Float64Counter
	cacheMissRate metric.Float64Counter
}

// NewAuthMetrics creates metrics for monitoring device authorization checks.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter(meterName)

	checkDuration, err := meter.Float64Histogram(
		"deviceauth.check.duration",
		metric.WithDescription("Duration of device authorization checks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	checkTotal, err := meter.Int64Counter(
		"deviceauth.check.total",
		metric.WithDescription("Total number of device authorization checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitRate, err := meter.Float64Counter(
		"deviceauth.cache.hit",
		metric.WithDescription("Number of authorization cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissRate, err := meter.Float64Counter(
		"deviceauth.cache.miss",
		metric.WithDescription("Number of authorization cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		checkDuration: checkDuration,
		checkTotal:    checkTotal,
		cacheHitRate:  cacheHitRate,
		cacheMissRate: cacheMissRate,
	}, nil
}

// RecordCheck records one authorization decision.
func (m *AuthMetrics) RecordCheck(state string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("deviceauth.state", state),
	}

	// Use background context for metrics to avoid context cancellation issues
	ctx := context.TODO()
	m.checkDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.checkTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheHit records an authorization cache hit.
func (m *AuthMetrics) RecordCacheHit() {
	m.cacheHitRate.Add(context.TODO(), 1)
}

// RecordCacheMiss records an authorization cache miss.
func (m *AuthMetrics) RecordCacheMiss() {
	m.cacheMissRate.Add(context.TODO(), 1)
}
