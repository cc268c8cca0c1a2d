// Package llm issues chat-completion calls to an OpenAI-compatible
// endpoint. Retry and fallback policy live in the pipeline, not here.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"rednote/internal/domain"
	"rednote/internal/infra"
)

// DefaultTimeout bounds one chat-completion round trip. A timed-out
// request surfaces as the same failure category as any other transport
// error.
const DefaultTimeout = 45 * time.Second

// Request describes one two-message conversation sent to the provider.
type Request struct {
	System      string
	User        string
	Temperature float64
	Config      infra.ProviderConfig
}

type Client struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a chat client. httpClient may be nil for the default
// 45s-timeout client; limiter may be nil to disable outbound throttling.
func NewClient(httpClient *http.Client, limiter *rate.Limiter) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{client: httpClient, limiter: limiter}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends the system+user conversation and returns the raw
// assistant text. It fails with domain.ErrNetwork on transport errors or
// non-success statuses, and domain.ErrEmptyResponse when the call succeeds
// but carries no usable text.
func (c *Client) ChatCompletion(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
		}
	}

	payload := chatRequest{
		Model: req.Config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature:    req.Temperature,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrNetwork, err)
	}

	endpoint := strings.TrimRight(req.Config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrNetwork, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: chat completion status %d: %s", domain.ErrNetwork, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrNetwork, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrEmptyResponse)
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: blank completion content", domain.ErrEmptyResponse)
	}
	return content, nil
}
