package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/transbridge/internal/translate"
)

func testProvider(baseURL string) *Provider {
	p := &Provider{
		config: Config{
			BaseURL: baseURL,
			APIKey:  "sk-test",
			Model:   "gpt-4o-mini",
		},
	}
	p.config.defaults()
	p.client = &http.Client{Timeout: 5 * time.Second}
	return p
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	var got oaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  你好  "}}]}`))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	out, err := p.Translate(context.Background(), "こんにちは", translate.LangJapanese, translate.LangChinese)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out != "你好" {
		t.Errorf("Translate() = %q, want trimmed 你好", out)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "こんにちは" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, "Simplified Chinese") {
		t.Errorf("system prompt %q does not name the target language", got.Messages[0].Content)
	}
	if !strings.Contains(got.Messages[0].Content, "Japanese") {
		t.Errorf("system prompt %q does not name the source language", got.Messages[0].Content)
	}
}

func TestTranslateAutoSourceOmitsSourceSentence(t *testing.T) {
	t.Parallel()

	var system string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req oaiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		system = req.Messages[0].Content
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	if _, err := p.Translate(context.Background(), "hej", translate.LangAuto, translate.LangEnglish); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if strings.Contains(system, "source language") {
		t.Errorf("system prompt %q names a source for auto detection", system)
	}
}

func TestTranslateErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, translate.ErrRateLimit},
		{"bad key", http.StatusUnauthorized, translate.ErrAuthentication},
		{"forbidden", http.StatusForbidden, translate.ErrAuthentication},
		{"server error", http.StatusInternalServerError, translate.ErrProviderDown},
		{"bad gateway", http.StatusBadGateway, translate.ErrProviderDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			p := testProvider(srv.URL)
			_, err := p.Translate(context.Background(), "hi", translate.LangAuto, translate.LangJapanese)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTranslateMalformedResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no choices", `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := testProvider(srv.URL)
			_, err := p.Translate(context.Background(), "hi", translate.LangAuto, translate.LangJapanese)
			if !errors.Is(err, translate.ErrMalformedResponse) {
				t.Errorf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestTranslateContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := testProvider(srv.URL)
	_, err := p.Translate(ctx, "hi", translate.LangAuto, translate.LangJapanese)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestLanguageName(t *testing.T) {
	t.Parallel()

	if got := languageName(translate.LangChinese); got != "Simplified Chinese" {
		t.Errorf("languageName(zh) = %q", got)
	}
	// Unmapped codes pass through as-is.
	if got := languageName(translate.Lang("fr")); got != "fr" {
		t.Errorf("languageName(fr) = %q", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var c Config
	c.defaults()
	if c.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
	if c.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d", c.MaxTokens)
	}
	if c.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s", c.Timeout)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	c := Config{APIKey: "sk-test", Model: "gpt-4o-mini"}
	c.defaults()
	if err := c.validate(); err != nil {
		t.Errorf("validate() error: %v", err)
	}

	missingKey := Config{Model: "gpt-4o-mini"}
	missingKey.defaults()
	if err := missingKey.validate(); err == nil {
		t.Error("validate() = nil, want error for missing api_key")
	}

	missingModel := Config{APIKey: "sk-test"}
	missingModel.defaults()
	if err := missingModel.validate(); err == nil {
		t.Error("validate() = nil, want error for missing model")
	}
}
