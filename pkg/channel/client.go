package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// providerClient is the shared HTTP client for JSON message providers.
// Requests are retried with exponential backoff on network errors and 5xx
// responses; 4xx responses are permanent and fail immediately.
type providerClient struct {
	client     *http.Client
	maxRetries int
	backoff    time.Duration
}

func newProviderClient() *providerClient {
	return &providerClient{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries: 2,
		backoff:    200 * time.Millisecond,
	}
}

// postJSON delivers a JSON payload and returns the response body.
func (c *providerClient) postJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal provider payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		respBody, status, err := c.attempt(ctx, url, headers, body)
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case status >= 200 && status < 300:
			return respBody, nil
		case status >= 400 && status < 500:
			// Client errors never succeed on retry.
			return nil, fmt.Errorf("provider rejected request: status %d: %s", status, truncateBody(respBody))
		default:
			lastErr = fmt.Errorf("provider error: status %d", status)
		}
	}
	return nil, lastErr
}

func (c *providerClient) attempt(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, 0, err
	}
	return respBody, resp.StatusCode, nil
}

// getJSON fetches a provider resource, used for delivery-status polling.
func (c *providerClient) getJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider status query failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 64<<10))
}

// messageIDFromResponse extracts the provider message id from a JSON
// response, trying the common field spellings.
func messageIDFromResponse(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, field := range []string{"message_id", "messageId", "id"} {
		if v, ok := payload[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
