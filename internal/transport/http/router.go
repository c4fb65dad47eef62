// Package httptransport assembles the service's root router.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docshost/internal/platform/metrics"
	"docshost/internal/platform/middleware"
	projecthandler "docshost/internal/project/handler"
	resolverhandler "docshost/internal/resolver/handler"
)

// NewRouter wires all endpoints: resolution routes, project admin routes,
// health, and metrics. Handlers carry their own middleware chains; the
// request latency histogram is recorded once here for everything.
func NewRouter(resolve *resolverhandler.Handler, projects *projecthandler.Handler, httpMetrics *metrics.Metrics) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Latency(httpMetrics))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	resolve.Register(router)
	projects.Register(router)

	return router
}
