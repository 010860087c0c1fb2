package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single HTTP exchange with a backend.
const DefaultTimeout = 60 * time.Second

// Option configures a backend client.
type Option func(*clientConfig)

type clientConfig struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	temperature *float64
	maxTokens   int
	maxRetries  int
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTemperature sets the sampling temperature sent with every request.
func WithTemperature(t float64) Option {
	return func(c *clientConfig) {
		c.temperature = &t
	}
}

// WithMaxTokens caps the length of generated output.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		c.maxTokens = n
	}
}

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

func newClientConfig(apiKey, baseURL, model string, opts []Option) clientConfig {
	c := clientConfig{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxTokens:  1024,
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// APIError is a non-success HTTP status from a backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// postJSON sends req as JSON and decodes a 200 response into out. Rate
// limit (429) and overload (529) responses are retried with backoff.
func (c *clientConfig) postJSON(ctx context.Context, url string, header http.Header, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		for k, v := range header {
			httpReq.Header[k] = v
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}

		respBody, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if httpResp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
			return nil
		}

		if (httpResp.StatusCode == 429 || httpResp.StatusCode == 529) && attempt < c.maxRetries {
			wait := retryAfterDelay(httpResp, attempt)
			slog.Warn("API rate limited, retrying", "status", httpResp.StatusCode, "attempt", attempt+1, "wait", wait)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return &APIError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}
}

// retryAfterDelay returns how long to wait before retrying a rate-limited request.
// It respects the retry-after header if present, otherwise uses exponential backoff.
func retryAfterDelay(resp *http.Response, attempt int) time.Duration {
	if ra := resp.Header.Get("retry-after"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	// Exponential backoff: 5s, 10s, 20s, 40s, 60s
	wait := time.Duration(5<<uint(attempt)) * time.Second
	if wait > 60*time.Second {
		wait = 60 * time.Second
	}
	return wait
}
