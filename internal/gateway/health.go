package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	UptimeMS int64  `json:"uptime_ms"`
	Webhooks int    `json:"webhooks"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g.dispatcher.mu.RLock()
		webhooks := len(g.dispatcher.handlers)
		g.dispatcher.mu.RUnlock()

		resp := HealthResponse{
			Status:   "ok",
			UptimeMS: time.Since(g.startedAt).Milliseconds(),
			Webhooks: webhooks,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
