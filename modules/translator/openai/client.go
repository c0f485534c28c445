package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flemzord/transbridge/internal/translate"
)

// OpenAI chat-completion wire types, trimmed to the fields translation uses.

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

// maxErrorBodySize caps how much of an error response body is read.
const maxErrorBodySize = 4096

// complete executes one chat completion round trip.
func (p *Provider) complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(oaiRequest{
		Model: p.config.Model,
		Messages: []oaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: p.config.MaxTokens,
		// Near-zero randomness: translation should be as deterministic as
		// the model allows.
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", translate.ErrProviderDown, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", translate.ErrMalformedResponse, err)
	}

	var oai oaiResponse
	if err := json.Unmarshal(body, &oai); err != nil {
		return "", fmt.Errorf("%w: %v", translate.ErrMalformedResponse, err)
	}
	if len(oai.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", translate.ErrMalformedResponse)
	}
	return oai.Choices[0].Message.Content, nil
}

// classifyStatus maps HTTP error status codes to the translate sentinels so
// the gateway's fallback policy sees classified failures.
func classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", translate.ErrRateLimit, body)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", translate.ErrAuthentication, resp.StatusCode, body)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", translate.ErrProviderDown, resp.StatusCode, body)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
}
