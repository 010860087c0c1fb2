package intent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/everydev1618/parley/llm"
)

// Defaults for LLMRouter.
const (
	DefaultRouteTimeout   = 20 * time.Second
	DefaultRouteCacheSize = 1024
)

// LLMRouterOption configures an LLMRouter.
type LLMRouterOption func(*LLMRouter)

// WithFallbackRouter sets the router consulted when the model cannot be
// reached. The default is a KeywordRouter with the built-in table.
func WithFallbackRouter(r Router) LLMRouterOption {
	return func(l *LLMRouter) {
		l.fallback = r
	}
}

// WithRouteTimeout bounds each model call.
func WithRouteTimeout(d time.Duration) LLMRouterOption {
	return func(l *LLMRouter) {
		l.timeout = d
	}
}

// WithCacheSize sets how many utterances keep their classification. Zero
// disables caching.
func WithCacheSize(n int) LLMRouterOption {
	return func(l *LLMRouter) {
		l.cacheSize = n
	}
}

// LLMRouter asks a chat model to name the label.
type LLMRouter struct {
	model     llm.LLM
	fallback  Router
	timeout   time.Duration
	cacheSize int
	cache     *lru.Cache
	prompt    string
}

// NewLLMRouter creates a router backed by model.
func NewLLMRouter(model llm.LLM, opts ...LLMRouterOption) (*LLMRouter, error) {
	r := &LLMRouter{
		model:     model,
		fallback:  NewKeywordRouter(),
		timeout:   DefaultRouteTimeout,
		cacheSize: DefaultRouteCacheSize,
		prompt:    routerPrompt(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.cacheSize > 0 {
		cache, err := lru.New(r.cacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

func routerPrompt() string {
	names := make([]string, 0, len(labelNames))
	for _, l := range Labels() {
		names = append(names, l.String())
	}
	return "You are a router. Output ONLY one word intent among: " + strings.Join(names, ", ")
}

// Route implements Router. A reply that is not exactly one label word is
// Fallback; a failed call is handed to the fallback router.
func (r *LLMRouter) Route(ctx context.Context, utterance string) Label {
	if r.cache != nil {
		if v, ok := r.cache.Get(utterance); ok {
			return v.(Label)
		}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.model.Generate(callCtx, []llm.Message{
		{Role: llm.RoleSystem, Content: r.prompt},
		{Role: llm.RoleUser, Content: utterance},
	})
	if err != nil {
		slog.Warn("intent model unavailable, using fallback router", "error", err)
		if r.fallback == nil {
			return Fallback
		}
		return r.fallback.Route(ctx, utterance)
	}

	label, ok := ParseLabel(resp.Content)
	if !ok {
		slog.Debug("intent model returned no label", "content", resp.Content)
	}
	if r.cache != nil {
		r.cache.Add(utterance, label)
	}
	return label
}
