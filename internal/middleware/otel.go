package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ecomcli/internal/infrastructure"
)

// HTTPMetrics records request count and latency per chi route pattern. The
// route is labelled once routing has finished, so unmatched paths share
// the "unmatched" label instead of creating a series per URL.
func HTTPMetrics(metrics *infrastructure.AnalysisMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := RoutePattern(r)
			metrics.RecordHTTPRequest(r.Context(), r.Method, route, ww.Status(), time.Since(start))

			if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
				span.SetAttributes(attribute.String("http.route", route))
				span.SetName(r.Method + " " + route)
			}
		})
	}
}

// RoutePattern returns the matched chi route pattern
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return "unmatched"
}
