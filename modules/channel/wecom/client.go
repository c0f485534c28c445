// Package wecom implements the WeChat Work (WeCom) channel for transbridge.
package wecom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const maxResponseBytes = 1 << 20

// tokenRefreshMargin is how long before actual expiry a cached access
// token is treated as stale.
const tokenRefreshMargin = 5 * time.Minute

// Client is a thin HTTP wrapper around the WeCom server API. It caches the
// corp access token and transparently refetches it on expiry or when the
// API rejects it.
type Client struct {
	corpID     string
	corpSecret string
	agentID    int
	baseURL    string
	http       *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a WeCom API client.
func NewClient(corpID, corpSecret string, agentID int, baseURL string) *Client {
	return &Client{
		corpID:     corpID,
		corpSecret: corpSecret,
		agentID:    agentID,
		baseURL:    baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AccessToken returns a valid cached token, fetching a fresh one when the
// cache is empty or within the refresh margin of expiry.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshMargin)) {
		return c.token, nil
	}
	return c.fetchTokenLocked(ctx)
}

// RefreshToken unconditionally fetches a fresh access token, replacing any
// cached one. Used by the proactive refresh job.
func (c *Client) RefreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.fetchTokenLocked(ctx)
	return err
}

func (c *Client) fetchTokenLocked(ctx context.Context) (string, error) {
	u := fmt.Sprintf("%s/cgi-bin/gettoken?corpid=%s&corpsecret=%s",
		c.baseURL, url.QueryEscape(c.corpID), url.QueryEscape(c.corpSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("wecom: create gettoken request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("wecom: gettoken request failed: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("wecom: read gettoken response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("wecom: decode gettoken response: %w", err)
	}
	if tr.ErrCode != 0 {
		return "", &APIError{Code: tr.ErrCode, Message: tr.ErrMsg}
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// SendText delivers a text message to one user via the agent. When the API
// rejects the cached token, the token is invalidated and the send retried
// once with a fresh one.
func (c *Client) SendText(ctx context.Context, userID, content string) error {
	err := c.sendText(ctx, userID, content)
	if err != nil && authRejected(err) {
		c.invalidateToken()
		err = c.sendText(ctx, userID, content)
	}
	return err
}

// GetUser fetches a member's name and avatar for the profile cache. Like
// SendText, a token rejection triggers one invalidate-and-retry.
func (c *Client) GetUser(ctx context.Context, userID string) (*userResponse, error) {
	user, err := c.getUser(ctx, userID)
	if err != nil && authRejected(err) {
		c.invalidateToken()
		user, err = c.getUser(ctx, userID)
	}
	return user, err
}

func (c *Client) getUser(ctx context.Context, userID string) (*userResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/cgi-bin/user/get?access_token=%s&userid=%s",
		c.baseURL, url.QueryEscape(token), url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("wecom: create user/get request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wecom: user/get request failed: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("wecom: read user/get response: %w", err)
	}

	var ur userResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("wecom: decode user/get response: %w", err)
	}
	if ur.ErrCode != 0 {
		return nil, &APIError{Code: ur.ErrCode, Message: ur.ErrMsg}
	}
	return &ur, nil
}

func (c *Client) sendText(ctx context.Context, userID, content string) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sendRequest{
		ToUser:  userID,
		MsgType: "text",
		AgentID: c.agentID,
		Text:    textContent{Content: content},
	})
	if err != nil {
		return fmt.Errorf("wecom: marshal send request: %w", err)
	}

	u := c.baseURL + "/cgi-bin/message/send?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("wecom: create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wecom: send request failed: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("wecom: read send response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Code: resp.StatusCode, Message: "http status " + strconv.Itoa(resp.StatusCode)}
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return fmt.Errorf("wecom: decode send response: %w", err)
	}
	if sr.ErrCode != 0 {
		return &APIError{Code: sr.ErrCode, Message: sr.ErrMsg}
	}
	return nil
}
