package line

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/pkg/event"
)

// maxWebhookBytes bounds inbound webhook body reads.
const maxWebhookBytes = 2 << 20

// eventHandler is the downstream consumer of normalized events.
type eventHandler interface {
	HandleEvent(ctx context.Context, ev event.InboundEvent) error
}

// WebhookReceiver authenticates and processes LINE webhook deliveries.
// It implements http.Handler and owns the full response: 401 on a bad
// signature, 500 on missing secret configuration, 400 on malformed JSON,
// and 200 once the envelope is accepted, regardless of per-event outcomes.
type WebhookReceiver struct {
	config  Config
	client  *Client
	handler eventHandler
	store   mapping.Store
	logger  *slog.Logger
}

// NewWebhookReceiver creates a receiver. store may be nil; profile capture
// is then skipped.
func NewWebhookReceiver(cfg Config, client *Client, handler eventHandler, store mapping.Store, logger *slog.Logger) *WebhookReceiver {
	return &WebhookReceiver{
		config:  cfg,
		client:  client,
		handler: handler,
		store:   store,
		logger:  logger,
	}
}

func (wr *WebhookReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	if !wr.config.SkipSignatureCheck {
		if wr.config.ChannelSecret == "" {
			wr.logger.Error("channel_secret not configured, rejecting webhook")
			http.Error(w, "server misconfigured", http.StatusInternalServerError)
			return
		}
		if !ValidSignature(wr.config.ChannelSecret, body, r.Header.Get("X-Line-Signature")) {
			wr.logger.Warn("webhook signature mismatch")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var envelope webhookRequest
	if err := json.Unmarshal(body, &envelope); err != nil {
		wr.logger.Warn("malformed webhook body", "error", err)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	// Events in one envelope are processed sequentially to preserve origin
	// ordering of replies; a failure on one event never aborts the rest.
	for i := range envelope.Events {
		wr.processEvent(r.Context(), &envelope.Events[i])
	}

	w.WriteHeader(http.StatusOK)
}

func (wr *WebhookReceiver) processEvent(ctx context.Context, we *webhookEvent) {
	ev := convertEvent(we)

	wr.logger.Debug("inbound event",
		"kind", ev.Kind,
		"message_kind", ev.MessageKind,
		"user", ev.UserID,
		"group", ev.GroupID)

	// Cache the sender's profile on follow and first message so that
	// similarity-based auto-mapping has something to match against.
	if ev.Kind == event.KindFollow || ev.Kind == event.KindMessage {
		wr.captureProfile(ctx, ev.UserID)
	}

	if err := wr.handler.HandleEvent(ctx, ev); err != nil {
		wr.logger.Error("event processing failed",
			"kind", ev.Kind,
			"user", ev.UserID,
			"error", err)
	}
}

func (wr *WebhookReceiver) captureProfile(ctx context.Context, userID string) {
	if wr.store == nil || userID == "" {
		return
	}
	if _, err := wr.store.LookupProfile(event.PlatformLine, userID); err == nil {
		return // already cached
	}

	profileCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	profile, err := wr.client.GetProfile(profileCtx, userID)
	if err != nil {
		wr.logger.Debug("profile fetch failed", "user", userID, "error", err)
		return
	}
	if err := wr.store.StoreProfile(event.PlatformLine, userID, mapping.Profile{
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.PictureURL,
	}); err != nil {
		wr.logger.Debug("profile store failed", "user", userID, "error", err)
	}
}
