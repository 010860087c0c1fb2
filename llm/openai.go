package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Default OpenAI configuration values
const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAILLM talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAILLM struct {
	cfg clientConfig
}

// NewOpenAI creates a chat completions client. The API key defaults to
// OPENAI_API_KEY and the base URL to OPENAI_BASE_URL when set.
func NewOpenAI(opts ...Option) *OpenAILLM {
	baseURL := DefaultOpenAIBaseURL
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		baseURL = v
	}
	return &OpenAILLM{
		cfg: newClientConfig(os.Getenv("OPENAI_API_KEY"), baseURL, DefaultOpenAIModel, opts),
	}
}

// Model returns the model requests are sent to.
func (o *OpenAILLM) Model() string {
	return o.cfg.model
}

type openAIRequest struct {
	Model       string      `json:"model"`
	Messages    []openAIMsg `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
}

type openAIMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int       `json:"index"`
		Message      openAIMsg `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate sends a chat completion request and returns the first choice.
func (o *OpenAILLM) Generate(ctx context.Context, messages []Message) (*Response, error) {
	start := time.Now()

	var resp openAIResponse
	url := strings.TrimRight(o.cfg.baseURL, "/") + "/chat/completions"
	if err := o.cfg.postJSON(ctx, url, o.header(), o.buildRequest(messages), &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	result := &Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
	}
	switch choice.FinishReason {
	case "stop":
		result.StopReason = StopReasonEnd
	case "length":
		result.StopReason = StopReasonLength
	case "content_filter":
		result.StopReason = StopReasonFiltered
	}
	return result, nil
}

func (o *OpenAILLM) header() http.Header {
	h := make(http.Header)
	if o.cfg.apiKey != "" {
		h.Set("Authorization", "Bearer "+o.cfg.apiKey)
	}
	return h
}

func (o *OpenAILLM) buildRequest(messages []Message) *openAIRequest {
	system, rest := splitSystem(messages)
	req := &openAIRequest{
		Model:       o.cfg.model,
		MaxTokens:   o.cfg.maxTokens,
		Temperature: o.cfg.temperature,
	}
	if system != "" {
		req.Messages = append(req.Messages, openAIMsg{Role: string(RoleSystem), Content: system})
	}
	for _, m := range rest {
		req.Messages = append(req.Messages, openAIMsg{Role: string(m.Role), Content: m.Content})
	}
	return req
}
