package relay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/transbridge/internal/core"
	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/internal/translate"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
)

// Module wires the relay Engine into the module system. The engine itself
// is registered as a service during Provision so channel modules can hand
// it inbound events; its collaborators (mapping store, translation
// provider, outbound senders) are resolved at Start, after every module
// has provisioned.
type Module struct {
	config Config
	engine *Engine
	appCtx *core.AppContext
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "relay.engine",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("relay: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.config.defaults()
	m.engine = NewEngine(m.config, m.logger)
	ctx.RegisterService(EngineService, m.engine)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter. It resolves the engine's collaborators
// from the service registry. The mapping store is mandatory; a missing
// translator degrades to pass-through, and a missing sender means that
// platform's channel module was not configured.
func (m *Module) Start() error {
	svc, ok := m.appCtx.Service(mapping.ServiceName)
	if !ok {
		return errors.New("relay: no mapping backend loaded (configure mapping.memory or mapping.sqlite)")
	}
	store, ok := svc.(mapping.Store)
	if !ok {
		return fmt.Errorf("relay: service %q is not a mapping.Store", mapping.ServiceName)
	}
	m.engine.BindStore(store)

	if svc, ok := m.appCtx.Service(translate.ProviderService); ok {
		if provider, ok := svc.(translate.Provider); ok {
			m.engine.BindTranslator(translate.NewGateway(provider, m.logger))
		}
	} else {
		m.logger.Warn("no translator module loaded, messages relay untranslated")
	}

	if svc, ok := m.appCtx.Service(LineSenderService); ok {
		if sender, ok := svc.(LineSender); ok {
			m.engine.BindLineSender(sender)
		}
	}
	if svc, ok := m.appCtx.Service(WecomSenderService); ok {
		if sender, ok := svc.(WecomSender); ok {
			m.engine.BindWecomSender(sender)
		}
	}

	m.logger.Info("relay engine started",
		"line_language", string(m.config.LineLanguage),
		"wecom_language", string(m.config.WecomLanguage),
	)
	return nil
}
