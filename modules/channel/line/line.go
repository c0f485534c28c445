package line

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/transbridge/internal/core"
	"github.com/flemzord/transbridge/internal/gateway"
	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/internal/relay"
)

func init() {
	core.RegisterModule(&Line{})
}

// Compile-time interface guards.
var (
	_ relay.LineSender  = (*Line)(nil)
	_ core.Configurable = (*Line)(nil)
	_ core.Provisioner  = (*Line)(nil)
	_ core.Validator    = (*Line)(nil)
	_ core.Starter      = (*Line)(nil)
	_ core.Stopper      = (*Line)(nil)
)

// Line is the LINE Messaging API channel. It receives webhook events on
// /webhook/line, normalizes them for the relay engine, and implements the
// outbound sender the engine uses to deliver text back to LINE.
type Line struct {
	config Config
	client *Client
	logger *slog.Logger
	appCtx *core.AppContext

	receiver *WebhookReceiver
}

// ModuleInfo implements core.Module.
func (l *Line) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.line",
		New: func() core.Module { return &Line{} },
	}
}

// Configure implements core.Configurable.
func (l *Line) Configure(node *yaml.Node) error {
	if err := node.Decode(&l.config); err != nil {
		return fmt.Errorf("line: decode config: %w", err)
	}
	l.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (l *Line) Provision(ctx *core.AppContext) error {
	l.appCtx = ctx
	l.logger = ctx.Logger
	l.client = NewClient(l.config.AccessToken, l.config.APIURL)
	ctx.RegisterService(relay.LineSenderService, relay.LineSender(l))
	return nil
}

// Validate implements core.Validator.
func (l *Line) Validate() error {
	return l.config.validate()
}

// Start implements core.Starter. It wires the webhook receiver into the
// gateway dispatcher and resolves the relay engine.
func (l *Line) Start() error {
	if l.config.SkipSignatureCheck {
		l.logger.Warn("LINE WEBHOOK SIGNATURE VERIFICATION IS DISABLED. " +
			"Anyone who can reach the webhook endpoint can inject events. " +
			"Never run this way in production.")
	}

	handler, err := l.resolveEngine()
	if err != nil {
		return err
	}

	var store mapping.Store
	if svc, ok := l.appCtx.Service(mapping.ServiceName); ok {
		store, _ = svc.(mapping.Store)
	}

	l.receiver = NewWebhookReceiver(l.config, l.client, handler, store, l.logger)

	svc, ok := l.appCtx.Service(gateway.DispatcherService)
	if !ok {
		return errors.New("line: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}
	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("line: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}
	dispatcher.Register("line", l.receiver)

	l.logger.Info("line channel started", "webhook", "/webhook/line")
	return nil
}

func (l *Line) resolveEngine() (eventHandler, error) {
	svc, ok := l.appCtx.Service(relay.EngineService)
	if !ok {
		return nil, errors.New("line: relay.engine service not found (is the relay module loaded?)")
	}
	engine, ok := svc.(*relay.Engine)
	if !ok {
		return nil, errors.New("line: relay.engine is not a *relay.Engine")
	}
	return engine, nil
}

// Stop implements core.Stopper.
func (l *Line) Stop(_ context.Context) error {
	l.logger.Info("line channel stopping")
	return nil
}

// Reply implements relay.LineSender.
func (l *Line) Reply(ctx context.Context, replyToken, text string) error {
	return l.client.Reply(ctx, replyToken, text)
}

// Push implements relay.LineSender.
func (l *Line) Push(ctx context.Context, userID, text string) error {
	return l.client.Push(ctx, userID, text)
}
