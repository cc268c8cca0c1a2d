// Package image posts synthesis requests to an images/generations
// endpoint and returns the first result URL.
package image

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

const DefaultTimeout = 45 * time.Second

// Size is the fixed target resolution requested from the provider. The
// cover canvas is 1080x1440; generating at 2304x3072 keeps the export
// sharp after downscale.
const Size = "2304x3072"

type Request struct {
	Prompt string
	Config infra.ProviderConfig
}

type Client struct {
	client  *http.Client
	limiter *rate.Limiter
}

func NewClient(httpClient *http.Client, limiter *rate.Limiter) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{client: httpClient, limiter: limiter}
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Size      string `json:"size"`
	Watermark bool   `json:"watermark"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate synthesizes one background image and returns its URL. Failure
// taxonomy matches the chat client: domain.ErrNetwork for transport or
// non-success statuses, domain.ErrEmptyResponse for a success with no
// results.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
		}
	}

	payload := generateRequest{
		Model:     req.Config.Model,
		Prompt:    req.Prompt,
		Size:      Size,
		Watermark: false,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrNetwork, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(req.Config.BaseURL), &buf)
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
		return "", fmt.Errorf("%w: image generation status %d: %s", domain.ErrNetwork, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrNetwork, err)
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].URL) == "" {
		return "", fmt.Errorf("%w: no image url returned", domain.ErrEmptyResponse)
	}
	return out.Data[0].URL, nil
}

// Some deployments configure the full generations URL as the base; only
// append the path when it is not already present.
func endpoint(baseURL string) string {
	if strings.Contains(baseURL, "/images/generations") {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/images/generations"
}
