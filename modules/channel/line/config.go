package line

import (
	"fmt"
	"net/url"
)

// Config holds the LINE channel configuration.
type Config struct {
	// ChannelSecret signs inbound webhook bodies. Required unless
	// signature checking is explicitly skipped.
	ChannelSecret string `yaml:"channel_secret"`

	// AccessToken is the long-lived channel access token for the
	// Messaging API.
	AccessToken string `yaml:"access_token"`

	// APIURL overrides the Messaging API base URL, for tests.
	APIURL string `yaml:"api_url"`

	// SkipSignatureCheck disables webhook signature verification.
	// Development only; the module logs loudly when it is on.
	SkipSignatureCheck bool `yaml:"skip_signature_check"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.APIURL == "" {
		c.APIURL = "https://api.line.me"
	}
}

// validate checks configuration constraints after defaults are applied.
func (c *Config) validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("line: access_token is required")
	}
	if c.ChannelSecret == "" && !c.SkipSignatureCheck {
		return fmt.Errorf("line: channel_secret is required (or set skip_signature_check for local development)")
	}
	if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("line: api_url must be a valid http/https URL, got %q", c.APIURL)
	}
	return nil
}
