// Package translate provides the translation gateway sitting between the
// relay engine and the configured translation provider. The gateway owns the
// short-circuit and failure policy; concrete providers live under
// modules/translator and are swapped via configuration.
package translate

import (
	"context"
	"errors"
	"log/slog"
)

// ProviderService is the registry name the active translator module
// publishes its Provider under.
const ProviderService = "translate.provider"

// Lang is an ISO-639-1 language code, or LangAuto for detection.
type Lang string

// Languages the bridge deploys with. Lang is an open string type; any
// ISO-639-1 code a provider understands is accepted in configuration.
const (
	LangAuto     Lang = "auto"
	LangJapanese Lang = "ja"
	LangChinese  Lang = "zh"
	LangKorean   Lang = "ko"
	LangEnglish  Lang = "en"
)

// Sentinel errors for provider operations. They are classified here and
// swallowed by the gateway; callers of Translate never see them.
var (
	// ErrRateLimit indicates the provider returned a rate limit response.
	ErrRateLimit = errors.New("translate: provider rate limited")

	// ErrAuthentication indicates the provider rejected the credentials.
	ErrAuthentication = errors.New("translate: provider authentication failed")

	// ErrProviderDown indicates the provider is temporarily unavailable.
	ErrProviderDown = errors.New("translate: provider unavailable")

	// ErrMalformedResponse indicates the provider response could not be parsed.
	ErrMalformedResponse = errors.New("translate: malformed provider response")
)

// Provider performs the actual translation of one text.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Translate renders text in the target language. A source of LangAuto
	// lets the provider detect the source language itself.
	Translate(ctx context.Context, text string, source, target Lang) (string, error)
}

// Gateway is the single entry point for translation. It short-circuits
// same-language and empty requests without touching the provider, and
// degrades any provider failure to the original input: relay availability
// is worth more than translation fidelity, so Translate never returns an
// error to its caller.
type Gateway struct {
	provider Provider
	logger   *slog.Logger

	// onFallback, if non-nil, is invoked once per swallowed provider
	// failure. The relay wires its fallback counter here.
	onFallback func()
}

// NewGateway creates a Gateway around the given provider.
func NewGateway(provider Provider, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{provider: provider, logger: logger}
}

// OnFallback registers a callback invoked for each swallowed provider error.
func (g *Gateway) OnFallback(fn func()) {
	g.onFallback = fn
}

// Translate returns text rendered in the target language, or text unchanged
// when translation is unnecessary or impossible. The returned string is
// never empty for a non-empty input.
func (g *Gateway) Translate(ctx context.Context, text string, source, target Lang) string {
	if text == "" {
		return text
	}
	if source == target && source != LangAuto {
		return text
	}
	if g.provider == nil {
		g.logger.Warn("no translation provider configured, passing text through")
		return text
	}

	translated, err := g.provider.Translate(ctx, text, source, target)
	if err != nil {
		// Deliberate: provider failures degrade to the untranslated
		// original. Callers cannot tell the difference; this log line is
		// the only signal.
		g.logger.Warn("translation failed, falling back to original text",
			"target", string(target),
			"error", err,
		)
		if g.onFallback != nil {
			g.onFallback()
		}
		return text
	}
	if translated == "" {
		g.logger.Warn("provider returned empty translation, falling back to original text",
			"target", string(target),
		)
		if g.onFallback != nil {
			g.onFallback()
		}
		return text
	}
	return translated
}
