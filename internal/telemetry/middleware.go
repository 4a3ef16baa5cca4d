package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsMeterName is the name used for the HTTP metrics meter
const HTTPMetricsMeterName = "github.com/mergington/activities-api/http"

// unknownRoute labels requests chi could not route
const unknownRoute = "unknown_route"

// Operations derived from the matched route
const (
	OperationListActivities = "list_activities"
	OperationGetActivity    = "get_activity"
	OperationSignup         = "signup"
	OperationUnregister     = "unregister"
	OperationOther          = "other"
)

// RouteOperation names the enrollment operation served by method on a chi
// route pattern. Patterns outside /activities map to OperationOther.
func RouteOperation(method, pattern string) string {
	pattern = strings.TrimSuffix(pattern, "/")
	switch {
	case pattern == "/activities" && method == http.MethodGet:
		return OperationListActivities
	case pattern == "/activities/{activityName}" && method == http.MethodGet:
		return OperationGetActivity
	case pattern == "/activities/{activityName}/signup" && method == http.MethodPost:
		return OperationSignup
	case pattern == "/activities/{activityName}/signup" && method == http.MethodDelete:
		return OperationUnregister
	default:
		return OperationOther
	}
}

// HTTPMetrics records request counts, latency and in-flight requests per
// route and enrollment operation. A nil *HTTPMetrics records nothing.
type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	inFlight        metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments, or returns nil for a nil provider
func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(HTTPMetricsMeterName)

	m := &HTTPMetrics{}
	var err error
	if m.requestDuration, err = meter.Float64Histogram(
		"activities_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests by route and enrollment operation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5),
	); err != nil {
		return nil, err
	}
	if m.requestsTotal, err = meter.Int64Counter(
		"activities_http_requests",
		metric.WithDescription("HTTP requests by route, enrollment operation and status"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter(
		"activities_http_in_flight_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Middleware records one measurement per request once chi has routed it
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the request context may already be cancelled when the handler returns
		ctx := r.Context()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		next.ServeHTTP(ww, r)

		route := getRoutePattern(r)
		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.String("operation", RouteOperation(r.Method, route)),
			attribute.String("status_code", strconv.Itoa(ww.Status())),
		)
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.requestsTotal.Add(ctx, 1, attrs)
	})
}

// getRoutePattern returns the chi pattern that matched r, never the raw path,
// so activity names do not become label values
func getRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unknownRoute
}
