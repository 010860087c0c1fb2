package parley

import (
	"fmt"
	"log/slog"

	"github.com/everydev1618/parley/intent"
	"github.com/everydev1618/parley/llm"
)

// NewRouter builds the intent router described by cfg. Model-backed routers
// fall back to the keyword router when the model cannot be reached.
func NewRouter(cfg RouterConfig) (intent.Router, error) {
	keywords := intent.NewKeywordRouter()
	if cfg.KeywordsFile != "" {
		rules, err := intent.LoadKeywordRules(cfg.KeywordsFile)
		if err != nil {
			return nil, err
		}
		keywords = intent.NewKeywordRouter(rules...)
	}

	backend := cfg.Backend
	if backend == BackendAuto || backend == "" {
		backend = BackendKeyword
		if cfg.OpenAIKey != "" {
			backend = BackendOpenAI
		}
	}

	var model llm.LLM
	switch backend {
	case BackendKeyword:
		slog.Debug("intent router", "backend", backend)
		return keywords, nil
	case BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: openai router needs OPENAI_API_KEY", ErrInvalidInput)
		}
		opts := modelOptions(cfg, cfg.OpenAIKey)
		if cfg.BaseURL != "" {
			opts = append(opts, llm.WithBaseURL(cfg.BaseURL))
		}
		model = llm.NewOpenAI(opts...)
	case BackendAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("%w: anthropic router needs ANTHROPIC_API_KEY", ErrInvalidInput)
		}
		model = llm.NewAnthropic(modelOptions(cfg, cfg.AnthropicKey)...)
	default:
		return nil, fmt.Errorf("%w: router backend %q", ErrInvalidInput, cfg.Backend)
	}

	slog.Debug("intent router", "backend", backend, "model", cfg.Model)
	return intent.NewLLMRouter(model,
		intent.WithFallbackRouter(keywords),
		intent.WithRouteTimeout(cfg.Timeout),
		intent.WithCacheSize(cfg.CacheSize),
	)
}

func modelOptions(cfg RouterConfig, key string) []llm.Option {
	opts := []llm.Option{
		llm.WithAPIKey(key),
		llm.WithTemperature(0),
		llm.WithMaxTokens(8),
	}
	if cfg.Model != "" {
		opts = append(opts, llm.WithModel(cfg.Model))
	}
	return opts
}
