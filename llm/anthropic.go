package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Default Anthropic configuration values
const (
	DefaultAnthropicModel   = "claude-sonnet-4-20250514"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
)

// AnthropicLLM is an LLM implementation using the Anthropic Messages API.
type AnthropicLLM struct {
	cfg clientConfig
}

// NewAnthropic creates a new Anthropic LLM client. The API key defaults to
// ANTHROPIC_API_KEY.
func NewAnthropic(opts ...Option) *AnthropicLLM {
	return &AnthropicLLM{
		cfg: newClientConfig(os.Getenv("ANTHROPIC_API_KEY"), DefaultAnthropicBaseURL, DefaultAnthropicModel, opts),
	}
}

// Model returns the model requests are sent to.
func (a *AnthropicLLM) Model() string {
	return a.cfg.model
}

// anthropicRequest is the API request format.
type anthropicRequest struct {
	Model       string         `json:"model"`
	Messages    []anthropicMsg `json:"messages"`
	System      string         `json:"system,omitempty"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature *float64       `json:"temperature,omitempty"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the API response format.
type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ValidateKey makes a minimal API call to verify the API key is valid.
func (a *AnthropicLLM) ValidateKey(ctx context.Context) error {
	if a.cfg.apiKey == "" {
		return fmt.Errorf("API key is empty")
	}

	req := &anthropicRequest{
		Model:     a.cfg.model,
		MaxTokens: 1,
		Messages:  []anthropicMsg{{Role: "user", Content: "hi"}},
	}
	var resp anthropicResponse
	err := a.cfg.postJSON(ctx, a.cfg.baseURL+"/v1/messages", a.header(), req, &resp)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("invalid API key: %w", err)
		}
		return fmt.Errorf("anthropic API rejected the request: %w", err)
	}
	return fmt.Errorf("could not reach Anthropic API: %w", err)
}

// Generate sends a request and returns the complete response.
func (a *AnthropicLLM) Generate(ctx context.Context, messages []Message) (*Response, error) {
	start := time.Now()

	var resp anthropicResponse
	if err := a.cfg.postJSON(ctx, a.cfg.baseURL+"/v1/messages", a.header(), a.buildRequest(messages), &resp); err != nil {
		return nil, err
	}

	return a.parseResponse(&resp, time.Since(start)), nil
}

func (a *AnthropicLLM) header() http.Header {
	h := make(http.Header)
	h.Set("x-api-key", a.cfg.apiKey)
	h.Set("anthropic-version", "2023-06-01")
	return h
}

func (a *AnthropicLLM) buildRequest(messages []Message) *anthropicRequest {
	system, rest := splitSystem(messages)
	req := &anthropicRequest{
		Model:       a.cfg.model,
		System:      system,
		MaxTokens:   a.cfg.maxTokens,
		Temperature: a.cfg.temperature,
	}
	for _, m := range rest {
		req.Messages = append(req.Messages, anthropicMsg{Role: string(m.Role), Content: m.Content})
	}
	return req
}

func (a *AnthropicLLM) parseResponse(resp *anthropicResponse, latency time.Duration) *Response {
	result := &Response{
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		LatencyMs:    latency.Milliseconds(),
	}

	switch resp.StopReason {
	case "end_turn":
		result.StopReason = StopReasonEnd
	case "max_tokens":
		result.StopReason = StopReasonLength
	case "stop_sequence":
		result.StopReason = StopReasonStop
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			result.Content += block.Text
		}
	}
	return result
}
