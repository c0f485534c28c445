package openai

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the configuration for the OpenAI-compatible translator.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// defaults sets default values for unset fields.
func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// validate returns an error if required fields are missing.
func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("translator.openai: base_url must be a valid http/https URL, got %q", c.BaseURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("translator.openai: api_key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("translator.openai: model is required")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("translator.openai: max_tokens must not be negative")
	}
	return nil
}
