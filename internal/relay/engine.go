// Package relay implements the message relay orchestrator: it takes
// canonical inbound events, resolves the counterpart recipient through the
// mapping store, translates the text, dispatches it to the opposite
// platform, and reports the outcome back to the origin user.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/internal/translate"
	"github.com/flemzord/transbridge/pkg/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// defaultCallTimeout bounds every outbound network call the engine makes.
const defaultCallTimeout = 10 * time.Second

// Engine is the relay orchestrator. It is stateless per event: one inbound
// event produces one deterministic forward or reply, with no cross-event
// state beyond the mapping store. There is no retry or requeue; a relay is
// a single best-effort attempt.
//
// Dependencies are bound late (see Bind*) because channel modules and the
// engine discover each other through the service registry during startup.
// All methods are safe for concurrent use once started.
type Engine struct {
	mu         sync.RWMutex
	store      mapping.Store
	translator *translate.Gateway
	line       LineSender
	wecom      WecomSender

	logger      *slog.Logger
	tracer      trace.Tracer
	config      Config
	callTimeout time.Duration
}

// NewEngine creates an Engine with the given configuration. Collaborators
// are attached afterwards via the Bind methods.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:      logger,
		tracer:      otel.Tracer("transbridge/relay"),
		config:      cfg,
		callTimeout: cfg.CallTimeout,
	}
}

// BindStore attaches the mapping store.
func (e *Engine) BindStore(store mapping.Store) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = store
}

// BindTranslator attaches the translation gateway.
func (e *Engine) BindTranslator(g *translate.Gateway) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.translator = g
	g.OnFallback(translationFallbacks.Inc)
}

// BindLineSender attaches the LINE outbound sender.
func (e *Engine) BindLineSender(s LineSender) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.line = s
}

// BindWecomSender attaches the WeCom outbound sender.
func (e *Engine) BindWecomSender(s WecomSender) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wecom = s
}

// HandleEvent processes one canonical inbound event to completion. The
// returned error is reserved for unexpected internal failures; expected
// outcomes (no mapping, dispatch fallback, dropped event) resolve to nil so
// webhook handlers answer the platform with success-shaped status.
func (e *Engine) HandleEvent(ctx context.Context, ev event.InboundEvent) error {
	ctx, span := e.tracer.Start(ctx, "relay.handle_event",
		trace.WithAttributes(
			attribute.String("event.platform", string(ev.Platform)),
			attribute.String("event.kind", string(ev.Kind)),
		))
	defer span.End()

	inboundEvents.WithLabelValues(string(ev.Platform), string(ev.Kind)).Inc()

	switch ev.Kind {
	case event.KindMessage:
		return e.handleMessage(ctx, &ev)
	case event.KindFollow:
		return e.handleFollow(ctx, &ev)
	case event.KindJoin:
		return e.handleJoin(ctx, &ev)
	case event.KindPostback:
		return e.handlePostback(ctx, &ev)
	case event.KindUnfollow, event.KindLeave, event.KindUnsend:
		// No reply channel exists for these; acknowledge by logging only.
		e.logger.Info("administrative event, no reply",
			"platform", string(ev.Platform),
			"kind", string(ev.Kind),
		)
		return nil
	default:
		e.logger.Info("unknown event kind ignored", "platform", string(ev.Platform))
		return nil
	}
}

func (e *Engine) handleMessage(ctx context.Context, ev *event.InboundEvent) error {
	if !ev.Valid() {
		e.logger.Warn("dropping message event violating content invariant",
			"platform", string(ev.Platform),
		)
		relays.WithLabelValues(string(ev.Platform), outcomeDropped).Inc()
		return nil
	}
	if ev.UserID == "" || (ev.Platform == event.PlatformLine && ev.ReplyToken == "") {
		e.logger.Warn("dropping message event without sender identity",
			"platform", string(ev.Platform),
			"has_reply_token", ev.ReplyToken != "",
		)
		relays.WithLabelValues(string(ev.Platform), outcomeDropped).Inc()
		return nil
	}

	// Kinds with no relay support are acknowledged to the origin directly,
	// without touching mapping or translation.
	if ev.MessageKind == event.MessageOther {
		e.ackUnsupported(ctx, ev)
		relays.WithLabelValues(string(ev.Platform), outcomeAckedLocal).Inc()
		return nil
	}

	text := messageText(ev)

	counterpart, err := e.resolveCounterpart(ev)
	if err != nil {
		if !errors.Is(err, mapping.ErrNotFound) {
			return err
		}
		e.logger.Info("no mapping for sender, origin-only fallback",
			"platform", string(ev.Platform),
			"user_id", ev.UserID,
			"group", ev.IsGroup(),
		)
		relays.WithLabelValues(string(ev.Platform), outcomeNoMapping).Inc()
		e.fallbackToOrigin(ctx, ev, text)
		return nil
	}

	target := e.targetLanguage(ev.Platform.Counterpart())
	translated := e.translatorRef().Translate(ctx, text, translate.LangAuto, target)

	if err := e.dispatch(ctx, ev.Platform.Counterpart(), counterpart, translated); err != nil {
		e.logger.Warn("outbound dispatch failed, origin-only fallback",
			"platform", string(ev.Platform),
			"counterpart_platform", string(ev.Platform.Counterpart()),
			"error", err,
		)
		relays.WithLabelValues(string(ev.Platform), outcomeFallback).Inc()
		e.fallbackToOrigin(ctx, ev, text)
		return nil
	}

	relays.WithLabelValues(string(ev.Platform), outcomeForwarded).Inc()
	e.confirmToOrigin(ctx, ev)
	return nil
}

// resolveCounterpart finds the recipient on the opposite platform: the
// mapped group for group events, otherwise the mapped user, with an
// auto-mapping attempt across cached counterpart profiles before giving up.
func (e *Engine) resolveCounterpart(ev *event.InboundEvent) (string, error) {
	store := e.storeRef()
	if store == nil {
		return "", mapping.ErrNotFound
	}

	if ev.IsGroup() {
		if ev.Platform == event.PlatformLine {
			return store.ResolveLineGroup(ev.GroupID)
		}
		return store.ResolveWecomGroup(ev.GroupID)
	}

	var (
		counterpart string
		err         error
	)
	if ev.Platform == event.PlatformLine {
		counterpart, err = store.ResolveLineUser(ev.UserID)
	} else {
		counterpart, err = store.ResolveWecomUser(ev.UserID)
	}
	if err == nil || !errors.Is(err, mapping.ErrNotFound) {
		return counterpart, err
	}

	if id, ok := e.tryAutoMap(store, ev); ok {
		return id, nil
	}
	return "", mapping.ErrNotFound
}

// tryAutoMap attempts profile-similarity auto-mapping of the sender against
// every cached profile on the opposite platform. Best-effort: any store
// error just means no mapping.
func (e *Engine) tryAutoMap(store mapping.Store, ev *event.InboundEvent) (string, bool) {
	candidates, err := store.ProfileIDs(ev.Platform.Counterpart())
	if err != nil || len(candidates) == 0 {
		return "", false
	}

	for _, candidate := range candidates {
		var (
			created bool
			mapErr  error
		)
		if ev.Platform == event.PlatformLine {
			created, mapErr = store.AttemptAutoMap(ev.UserID, candidate)
		} else {
			created, mapErr = store.AttemptAutoMap(candidate, ev.UserID)
		}
		if mapErr != nil || !created {
			continue
		}
		autoMappings.Inc()
		e.logger.Info("auto-mapped users by profile similarity",
			"platform", string(ev.Platform),
			"user_id", ev.UserID,
			"counterpart", candidate,
		)
		return candidate, true
	}
	return "", false
}

// dispatch sends translated text to the recipient on the destination platform.
func (e *Engine) dispatch(ctx context.Context, dest event.Platform, recipient, text string) error {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	switch dest {
	case event.PlatformWecom:
		sender := e.wecomRef()
		if sender == nil {
			return errors.New("relay: wecom sender not bound")
		}
		return sender.Send(ctx, recipient, text)
	default:
		sender := e.lineRef()
		if sender == nil {
			return errors.New("relay: line sender not bound")
		}
		// The relay target never issued a reply token to this process,
		// so delivery to LINE is always a push.
		return sender.Push(ctx, recipient, text)
	}
}

// confirmToOrigin tells the sending user their message was forwarded.
func (e *Engine) confirmToOrigin(ctx context.Context, ev *event.InboundEvent) {
	switch ev.Platform {
	case event.PlatformLine:
		e.replyToLine(ctx, ev.ReplyToken, e.config.ConfirmToLine)
	case event.PlatformWecom:
		e.sendToWecom(ctx, ev.UserID, e.config.ConfirmToWecom)
	}
}

// fallbackToOrigin performs the origin-only fallback: LINE senders get
// their original text echoed back through the reply token; WeCom has no
// reply-token flow, so its side of the fallback is silence.
func (e *Engine) fallbackToOrigin(ctx context.Context, ev *event.InboundEvent, text string) {
	if ev.Platform != event.PlatformLine {
		return
	}
	e.replyToLine(ctx, ev.ReplyToken, text)
}

// ackUnsupported replies directly to the origin for message kinds the
// bridge cannot relay.
func (e *Engine) ackUnsupported(ctx context.Context, ev *event.InboundEvent) {
	switch ev.Platform {
	case event.PlatformLine:
		e.replyToLine(ctx, ev.ReplyToken, e.config.UnsupportedToLine)
	case event.PlatformWecom:
		e.sendToWecom(ctx, ev.UserID, e.config.UnsupportedToWecom)
	}
}

// handleFollow welcomes a new contact. LINE issues a reply token with the
// follow event; WeCom subscribe events have none, so the welcome goes out
// as a directed send.
func (e *Engine) handleFollow(ctx context.Context, ev *event.InboundEvent) error {
	switch ev.Platform {
	case event.PlatformWecom:
		if ev.UserID != "" {
			e.sendToWecom(ctx, ev.UserID, e.config.SubscribeWelcome)
		}
	default:
		if ev.ReplyToken != "" {
			e.replyToLine(ctx, ev.ReplyToken, e.config.FollowWelcome)
		}
	}
	return nil
}

func (e *Engine) handleJoin(ctx context.Context, ev *event.InboundEvent) error {
	if ev.ReplyToken == "" {
		return nil
	}
	e.replyToLine(ctx, ev.ReplyToken, e.config.JoinWelcome)
	return nil
}

// handlePostback echoes the postback payload back to the origin user.
func (e *Engine) handlePostback(ctx context.Context, ev *event.InboundEvent) error {
	if ev.ReplyToken == "" || ev.PostbackData == "" {
		return nil
	}
	e.replyToLine(ctx, ev.ReplyToken, ev.PostbackData)
	return nil
}

// replyToLine consumes a reply token. Failures are logged, never escalated:
// the token is spent either way and the inbound request already succeeded.
func (e *Engine) replyToLine(ctx context.Context, replyToken, text string) {
	sender := e.lineRef()
	if sender == nil {
		e.logger.Warn("line sender not bound, reply dropped")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	if err := sender.Reply(ctx, replyToken, text); err != nil {
		e.logger.Warn("line reply failed", "error", err)
	}
}

func (e *Engine) sendToWecom(ctx context.Context, userID, text string) {
	sender := e.wecomRef()
	if sender == nil {
		e.logger.Warn("wecom sender not bound, send dropped")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	if err := sender.Send(ctx, userID, text); err != nil {
		e.logger.Warn("wecom send failed", "user_id", userID, "error", err)
	}
}

// targetLanguage returns the configured natural language for messages
// delivered to the given platform.
func (e *Engine) targetLanguage(dest event.Platform) translate.Lang {
	if dest == event.PlatformLine {
		return e.config.LineLanguage
	}
	return e.config.WecomLanguage
}

func (e *Engine) storeRef() mapping.Store {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store
}

func (e *Engine) translatorRef() *translate.Gateway {
	e.mu.RLock()
	g := e.translator
	e.mu.RUnlock()
	if g == nil {
		// Not bound yet: behave as a pass-through gateway.
		return translate.NewGateway(nil, e.logger)
	}
	return g
}

func (e *Engine) lineRef() LineSender {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.line
}

func (e *Engine) wecomRef() WecomSender {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wecom
}
