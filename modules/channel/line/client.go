// Package line implements the LINE Messaging API channel for transbridge.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 1 << 20 // 1 MiB, Messaging API responses are small.
)

// Client is a thin HTTP wrapper around the LINE Messaging API.
type Client struct {
	accessToken string
	baseURL     string
	http        *http.Client
}

// NewClient creates a Messaging API client authenticated with the given
// channel access token.
func NewClient(accessToken, baseURL string) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends one API request and decodes the response into T. It retries 429
// responses honoring the Retry-After header (max 3 attempts, exponential
// backoff when the header is absent).
func do[T any](ctx context.Context, c *Client, method, path string, payload any) (*T, error) {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("line: marshal %s request: %w", path, err)
		}
	}

	backoff := initialBackoff

	for attempt := range maxRetries {
		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("line: create %s request: %w", path, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("line: %s request failed: %w", path, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("line: read %s response: %w", path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			if after, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && after > 0 {
				backoff = time.Duration(after) * time.Second
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			var apiErr errorResponse
			_ = json.Unmarshal(respBody, &apiErr)
			return nil, &APIError{Status: resp.StatusCode, Message: apiErr.Message}
		}

		result := new(T)
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return nil, fmt.Errorf("line: decode %s response: %w", path, err)
			}
		}
		return result, nil
	}

	return nil, fmt.Errorf("line: %s: max retries exceeded", path)
}

// Reply sends a text message using a single-use reply token. The token is
// consumed by the attempt whether or not the call succeeds.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	_, err := do[struct{}](ctx, c, http.MethodPost, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	})
	return err
}

// Push sends a text message directly to a user, group, or room.
func (c *Client) Push(ctx context.Context, to, text string) error {
	_, err := do[struct{}](ctx, c, http.MethodPost, "/v2/bot/message/push", pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	return err
}

// GetProfile fetches a user's display name and avatar.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return do[Profile](ctx, c, http.MethodGet, "/v2/bot/profile/"+url.PathEscape(userID), nil)
}
