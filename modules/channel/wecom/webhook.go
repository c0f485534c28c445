package wecom

import (
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/pkg/event"
)

const maxWebhookBytes = 1 << 20

// eventHandler is the downstream consumer of normalized events.
type eventHandler interface {
	HandleEvent(ctx context.Context, ev event.InboundEvent) error
}

// WebhookReceiver authenticates and processes WeCom callback requests. It
// implements http.Handler for both the GET verification handshake and POST
// message delivery: 403 on a bad signature, 500 on missing configuration,
// 400 on structurally invalid XML or a disallowed plaintext payload, and
// an empty <xml></xml> 200 once a POST delivery is accepted.
type WebhookReceiver struct {
	config  Config
	cipher  *Cipher
	client  *Client
	handler eventHandler
	store   mapping.Store
	logger  *slog.Logger
}

// NewWebhookReceiver creates a receiver. cipher may be nil only when
// plaintext mode is allowed; store may be nil, profile capture is then
// skipped.
func NewWebhookReceiver(cfg Config, cipher *Cipher, client *Client, handler eventHandler, store mapping.Store, logger *slog.Logger) *WebhookReceiver {
	return &WebhookReceiver{
		config:  cfg,
		cipher:  cipher,
		client:  client,
		handler: handler,
		store:   store,
		logger:  logger,
	}
}

func (wr *WebhookReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		wr.handleVerification(w, r)
	case http.MethodPost:
		wr.handleDelivery(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleVerification answers the console's URL verification handshake. In
// encrypted mode the echostr query parameter is itself an encrypted blob
// and the response body is its decrypted plaintext, not the raw parameter.
// In plaintext mode (allow_plaintext without an aes_key) the signed echostr
// is echoed back verbatim.
func (wr *WebhookReceiver) handleVerification(w http.ResponseWriter, r *http.Request) {
	if wr.config.Token == "" {
		wr.logger.Error("callback token not configured, rejecting handshake")
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	sig := q.Get("msg_signature")
	timestamp := q.Get("timestamp")
	nonce := q.Get("nonce")
	echostr := q.Get("echostr")

	if !ValidSignature(sig, wr.config.Token, timestamp, nonce, echostr) {
		wr.logger.Warn("handshake signature mismatch")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	if wr.cipher == nil {
		if wr.config.AllowPlaintext {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(echostr))
			return
		}
		wr.logger.Error("aes_key not configured, cannot decrypt echostr")
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}

	plain, err := wr.cipher.Decrypt(echostr)
	if err != nil {
		wr.logger.Warn("echostr decryption failed", "error", err)
		http.Error(w, "invalid echostr", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(plain)
}

func (wr *WebhookReceiver) handleDelivery(w http.ResponseWriter, r *http.Request) {
	if wr.config.Token == "" {
		wr.logger.Error("callback token not configured, rejecting delivery")
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	var envelope callbackEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		wr.logger.Warn("malformed callback XML", "error", err)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	sig := q.Get("msg_signature")
	timestamp := q.Get("timestamp")
	nonce := q.Get("nonce")

	msg, ok := wr.extractMessage(w, &envelope, sig, timestamp, nonce)
	if !ok {
		return
	}

	ev := convertMessage(msg)
	wr.logger.Debug("inbound event",
		"kind", ev.Kind,
		"message_kind", ev.MessageKind,
		"user", ev.UserID)

	// Cache the sender's profile on subscribe and first message so that
	// similarity-based auto-mapping has something to match against.
	if ev.Kind == event.KindFollow || ev.Kind == event.KindMessage {
		wr.captureProfile(r.Context(), ev.UserID)
	}

	if err := wr.handler.HandleEvent(r.Context(), ev); err != nil {
		wr.logger.Error("event processing failed",
			"kind", ev.Kind,
			"user", ev.UserID,
			"error", err)
	}

	// WeCom expects an empty xml body as the passive acknowledgement.
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<xml></xml>"))
}

func (wr *WebhookReceiver) captureProfile(ctx context.Context, userID string) {
	if wr.store == nil || wr.client == nil || userID == "" {
		return
	}
	if _, err := wr.store.LookupProfile(event.PlatformWecom, userID); err == nil {
		return // already cached
	}

	userCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	user, err := wr.client.GetUser(userCtx, userID)
	if err != nil {
		wr.logger.Debug("profile fetch failed", "user", userID, "error", err)
		return
	}
	if err := wr.store.StoreProfile(event.PlatformWecom, userID, mapping.Profile{
		DisplayName: user.Name,
		AvatarURL:   user.Avatar,
	}); err != nil {
		wr.logger.Debug("profile store failed", "user", userID, "error", err)
	}
}

// extractMessage verifies the signature and yields the logical message.
// The presence of the Encrypt element, not the content type, decides the
// parse mode. On failure it writes the error response and returns false.
func (wr *WebhookReceiver) extractMessage(w http.ResponseWriter, envelope *callbackEnvelope, sig, timestamp, nonce string) (*inlineMessage, bool) {
	if envelope.Encrypt == "" {
		if !wr.config.AllowPlaintext {
			wr.logger.Warn("plaintext callback rejected, allow_plaintext is off")
			http.Error(w, "encrypted payload required", http.StatusBadRequest)
			return nil, false
		}
		if !ValidSignature(sig, wr.config.Token, timestamp, nonce) {
			wr.logger.Warn("plaintext delivery signature mismatch")
			http.Error(w, "invalid signature", http.StatusForbidden)
			return nil, false
		}
		return &envelope.inlineMessage, true
	}

	if !ValidSignature(sig, wr.config.Token, timestamp, nonce, envelope.Encrypt) {
		wr.logger.Warn("delivery signature mismatch")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return nil, false
	}

	if wr.cipher == nil {
		wr.logger.Error("aes_key not configured, cannot decrypt delivery")
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return nil, false
	}

	plain, err := wr.cipher.Decrypt(envelope.Encrypt)
	if err != nil {
		wr.logger.Warn("delivery decryption failed", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil, false
	}

	var inner innerMessage
	if err := xml.Unmarshal(plain, &inner); err != nil {
		wr.logger.Warn("malformed inner XML", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil, false
	}
	return &inner.inlineMessage, true
}
