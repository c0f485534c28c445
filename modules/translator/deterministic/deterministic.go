// Package deterministic implements a translation provider that tags text
// with the target language instead of translating it. It exists so test
// suites and local development stay reproducible and free of network calls:
// "hello" translated to ja becomes "[ja]hello", always.
package deterministic

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/transbridge/internal/core"
	"github.com/flemzord/transbridge/internal/translate"
)

func init() {
	core.RegisterModule(&Provider{})
}

// Compile-time interface guards.
var (
	_ translate.Provider = (*Provider)(nil)
	_ core.Configurable  = (*Provider)(nil)
	_ core.Provisioner   = (*Provider)(nil)
)

// Config holds the deterministic translator configuration.
type Config struct {
	// Marker overrides the language tag. Empty means tag with the target
	// language code.
	Marker string `yaml:"marker"`
}

// Provider is the deterministic translator module, registered as
// "translator.deterministic".
type Provider struct {
	config Config
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "translator.deterministic",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return fmt.Errorf("translator.deterministic: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	ctx.RegisterService(translate.ProviderService, translate.Provider(p))
	return nil
}

// Translate implements translate.Provider.
func (p *Provider) Translate(_ context.Context, text string, _, target translate.Lang) (string, error) {
	marker := p.config.Marker
	if marker == "" {
		marker = string(target)
	}
	return "[" + marker + "]" + text, nil
}
