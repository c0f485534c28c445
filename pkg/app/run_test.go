package app

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/transbridge/internal/config"
	"github.com/flemzord/transbridge/internal/security"
)

func configFromYAML(t *testing.T, content string) *config.Config {
	t.Helper()
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	return &cfg
}

func TestRegisterConfigSecrets(t *testing.T) {
	t.Parallel()

	cfg := configFromYAML(t, `
version: "1"
modules:
  channel.line:
    channel_secret: linesecret123
    access_token: linetoken456
    api_url: https://api.line.me
  channel.wecom:
    corp_secret: wecomsecret789
    aes_key: wecomaeskey000
    agent_id: 1000002
`)

	r := security.NewRedactor()
	registerConfigSecrets(cfg, r)

	for _, secret := range []string{"linesecret123", "linetoken456", "wecomsecret789", "wecomaeskey000"} {
		out := r.Redact("value is " + secret + " here")
		if strings.Contains(out, secret) {
			t.Errorf("secret %q not registered as literal", secret)
		}
	}

	// Non-secret values stay readable.
	if out := r.Redact("calling https://api.line.me now"); !strings.Contains(out, "https://api.line.me") {
		t.Errorf("non-secret value redacted: %q", out)
	}
}

func TestRegisterConfigSecretsNested(t *testing.T) {
	t.Parallel()

	cfg := configFromYAML(t, `
version: "1"
modules:
  mapping.sqlite:
    backup:
      password: nestedpw123
`)

	r := security.NewRedactor()
	registerConfigSecrets(cfg, r)

	if out := r.Redact("using nestedpw123"); strings.Contains(out, "nestedpw123") {
		t.Error("nested secret not registered")
	}
}

func TestSecretKeyPattern(t *testing.T) {
	t.Parallel()

	secretKeys := []string{"channel_secret", "access_token", "api_key", "aes_key", "corp_secret", "Token", "PASSWORD"}
	for _, k := range secretKeys {
		if !secretKeyPattern.MatchString(k) {
			t.Errorf("key %q not matched as secret", k)
		}
	}

	plainKeys := []string{"bind", "api_url", "model", "agent_id", "line_language"}
	for _, k := range plainKeys {
		if secretKeyPattern.MatchString(k) {
			t.Errorf("key %q wrongly matched as secret", k)
		}
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DefaultDataDir(); got != "/tmp/xdg-data/transbridge" {
		t.Errorf("DefaultDataDir() = %q", got)
	}
}
