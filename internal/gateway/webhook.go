package gateway

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// WebhookDispatcher routes /webhook/{source} requests to the handler a
// channel module registered for that source. Signature verification is
// platform-specific (LINE signs the raw body with HMAC-SHA256, WeCom signs
// query parameters with sorted SHA1), so authentication and response-code
// semantics belong to the registered handler, not the dispatcher.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
	logger   *slog.Logger
}

// NewWebhookDispatcher creates a ready-to-use dispatcher.
func NewWebhookDispatcher(logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers: make(map[string]http.Handler),
		logger:   logger,
	}
}

// Register adds a handler for the given source, overwriting any previous one.
func (d *WebhookDispatcher) Register(source string, h http.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[source] = h
}

// ServeHTTP implements http.Handler. It extracts the source from the chi
// URL param and delegates; the handler owns the full response.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	d.mu.RLock()
	handler, ok := d.handlers[source]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("webhook received for unregistered source", "source", source)
		http.NotFound(w, r)
		return
	}

	handler.ServeHTTP(w, r)
}
