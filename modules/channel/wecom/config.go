package wecom

import (
	"fmt"
	"net/url"
)

// Config holds the WeCom channel configuration.
type Config struct {
	// CorpID is the enterprise id; it doubles as the receiver id checked
	// during callback decryption.
	CorpID string `yaml:"corp_id"`

	// CorpSecret is the application secret used to fetch access tokens.
	CorpSecret string `yaml:"corp_secret"`

	// AgentID is the numeric application id messages are sent through.
	AgentID int `yaml:"agent_id"`

	// Token is the callback verification token configured in the console.
	Token string `yaml:"token"`

	// AESKey is the 43-character EncodingAESKey for callback decryption.
	AESKey string `yaml:"aes_key"`

	// AllowPlaintext accepts unencrypted callback bodies. Test and
	// development only; encrypted-only is the production posture and
	// plaintext deliveries are rejected with 400 when this is off.
	AllowPlaintext bool `yaml:"allow_plaintext"`

	// APIURL overrides the server API base URL, for tests.
	APIURL string `yaml:"api_url"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.APIURL == "" {
		c.APIURL = "https://qyapi.weixin.qq.com"
	}
}

// validate checks configuration constraints after defaults are applied.
func (c *Config) validate() error {
	if c.CorpID == "" {
		return fmt.Errorf("wecom: corp_id is required")
	}
	if c.CorpSecret == "" {
		return fmt.Errorf("wecom: corp_secret is required")
	}
	if c.AgentID == 0 {
		return fmt.Errorf("wecom: agent_id is required")
	}
	if c.Token == "" {
		return fmt.Errorf("wecom: token is required")
	}
	if c.AESKey == "" && !c.AllowPlaintext {
		return fmt.Errorf("wecom: aes_key is required (or set allow_plaintext for local development)")
	}
	if c.AESKey != "" && len(c.AESKey) != 43 {
		return fmt.Errorf("wecom: aes_key must be 43 characters, got %d", len(c.AESKey))
	}
	if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("wecom: api_url must be a valid http/https URL, got %q", c.APIURL)
	}
	return nil
}
