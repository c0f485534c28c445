package wecom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/transbridge/internal/core"
	"github.com/flemzord/transbridge/internal/cron"
	"github.com/flemzord/transbridge/internal/gateway"
	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/internal/relay"
)

func init() {
	core.RegisterModule(&Wecom{})
}

// Compile-time interface guards.
var (
	_ relay.WecomSender = (*Wecom)(nil)
	_ core.Configurable = (*Wecom)(nil)
	_ core.Provisioner  = (*Wecom)(nil)
	_ core.Validator    = (*Wecom)(nil)
	_ core.Starter      = (*Wecom)(nil)
	_ core.Stopper      = (*Wecom)(nil)
)

// Wecom is the WeChat Work channel. It receives encrypted callback
// deliveries on /webhook/wecom, normalizes them for the relay engine, and
// implements the outbound sender the engine uses to deliver text to WeCom
// users through the application agent.
type Wecom struct {
	config Config
	client *Client
	cipher *Cipher
	logger *slog.Logger
	appCtx *core.AppContext

	receiver *WebhookReceiver
}

// ModuleInfo implements core.Module.
func (wc *Wecom) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.wecom",
		New: func() core.Module { return &Wecom{} },
	}
}

// Configure implements core.Configurable.
func (wc *Wecom) Configure(node *yaml.Node) error {
	if err := node.Decode(&wc.config); err != nil {
		return fmt.Errorf("wecom: decode config: %w", err)
	}
	wc.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (wc *Wecom) Provision(ctx *core.AppContext) error {
	wc.appCtx = ctx
	wc.logger = ctx.Logger
	wc.client = NewClient(wc.config.CorpID, wc.config.CorpSecret, wc.config.AgentID, wc.config.APIURL)

	if wc.config.AESKey != "" {
		cipher, err := NewCipher(wc.config.AESKey, wc.config.CorpID)
		if err != nil {
			return err
		}
		wc.cipher = cipher
	}

	ctx.RegisterService(relay.WecomSenderService, relay.WecomSender(wc))
	return nil
}

// Validate implements core.Validator.
func (wc *Wecom) Validate() error {
	return wc.config.validate()
}

// Start implements core.Starter. It wires the webhook receiver into the
// gateway dispatcher, resolves the relay engine, and registers the token
// refresh job with the shared scheduler.
func (wc *Wecom) Start() error {
	if wc.config.AllowPlaintext {
		wc.logger.Warn("WECOM PLAINTEXT CALLBACKS ARE ENABLED. " +
			"Unencrypted payloads will be accepted. " +
			"Never run this way in production.")
	}

	handler, err := wc.resolveEngine()
	if err != nil {
		return err
	}

	var store mapping.Store
	if svc, ok := wc.appCtx.Service(mapping.ServiceName); ok {
		store, _ = svc.(mapping.Store)
	}

	wc.receiver = NewWebhookReceiver(wc.config, wc.cipher, wc.client, handler, store, wc.logger)

	svc, ok := wc.appCtx.Service(gateway.DispatcherService)
	if !ok {
		return errors.New("wecom: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}
	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("wecom: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}
	dispatcher.Register("wecom", wc.receiver)

	wc.registerRefreshJob()

	wc.logger.Info("wecom channel started", "webhook", "/webhook/wecom")
	return nil
}

// registerRefreshJob keeps the access token warm so the first send after an
// idle period does not pay the token round trip. The scheduler is optional;
// without it tokens are still fetched lazily on send.
func (wc *Wecom) registerRefreshJob() {
	svc, ok := wc.appCtx.Service(cron.SchedulerService)
	if !ok {
		wc.logger.Debug("cron scheduler not loaded, skipping proactive token refresh")
		return
	}
	scheduler, ok := svc.(*cron.Scheduler)
	if !ok {
		wc.logger.Warn("cron.scheduler service has unexpected type, skipping token refresh job")
		return
	}
	if err := scheduler.RegisterJob(&tokenRefreshJob{client: wc.client, logger: wc.logger}); err != nil {
		wc.logger.Warn("token refresh job registration failed", "error", err)
	}
}

func (wc *Wecom) resolveEngine() (eventHandler, error) {
	svc, ok := wc.appCtx.Service(relay.EngineService)
	if !ok {
		return nil, errors.New("wecom: relay.engine service not found (is the relay module loaded?)")
	}
	engine, ok := svc.(*relay.Engine)
	if !ok {
		return nil, errors.New("wecom: relay.engine is not a *relay.Engine")
	}
	return engine, nil
}

// Stop implements core.Stopper.
func (wc *Wecom) Stop(_ context.Context) error {
	wc.logger.Info("wecom channel stopping")
	return nil
}

// Send implements relay.WecomSender.
func (wc *Wecom) Send(ctx context.Context, userID, text string) error {
	return wc.client.SendText(ctx, userID, text)
}

// tokenRefreshJob proactively refreshes the corp access token. Tokens live
// about two hours; an hourly refresh keeps the cache inside the margin.
type tokenRefreshJob struct {
	client *Client
	logger *slog.Logger
}

func (j *tokenRefreshJob) Name() string { return "wecom-token-refresh" }

func (j *tokenRefreshJob) Schedule() string { return "0 * * * *" }

func (j *tokenRefreshJob) Run(ctx context.Context) error {
	if err := j.client.RefreshToken(ctx); err != nil {
		j.logger.Warn("proactive token refresh failed", "error", err)
		return err
	}
	j.logger.Debug("access token refreshed")
	return nil
}
