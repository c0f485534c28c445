// Package openai implements the LLM-backed translation provider speaking
// the OpenAI chat-completions wire format. Any endpoint compatible with
// that format works via base_url.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

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
	_ core.Validator     = (*Provider)(nil)
)

// languageNames spells codes out for the prompt; models follow full
// language names more reliably than bare ISO codes.
var languageNames = map[translate.Lang]string{
	translate.LangJapanese: "Japanese",
	translate.LangChinese:  "Simplified Chinese",
	translate.LangKorean:   "Korean",
	translate.LangEnglish:  "English",
}

// Provider is the OpenAI-compatible translator module, registered as
// "translator.openai".
type Provider struct {
	config Config
	client *http.Client
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "translator.openai",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return fmt.Errorf("translator.openai: decode config: %w", err)
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	p.client = &http.Client{Timeout: p.config.Timeout}
	ctx.RegisterService(translate.ProviderService, translate.Provider(p))
	return nil
}

// Validate implements core.Validator.
func (p *Provider) Validate() error {
	return p.config.validate()
}

// Translate implements translate.Provider. One instruction-plus-text
// exchange; the model's reply is the translation and nothing else.
func (p *Provider) Translate(ctx context.Context, text string, source, target translate.Lang) (string, error) {
	system := fmt.Sprintf(
		"You are a translation engine. Translate the user's message into %s. "+
			"Reply with the translation only, no commentary, no quotes.",
		languageName(target))
	if source != translate.LangAuto {
		system += fmt.Sprintf(" The source language is %s.", languageName(source))
	}

	out, err := p.complete(ctx, system, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func languageName(l translate.Lang) string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return string(l)
}
