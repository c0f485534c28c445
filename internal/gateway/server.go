package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth; platforms authenticate via signatures.
	r.Get("/health", g.handleHealth())
	r.HandleFunc("/webhook/{source}", g.dispatcher.ServeHTTP)

	if g.config.Metrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	return r
}
