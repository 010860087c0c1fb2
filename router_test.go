package parley

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/everydev1618/parley/intent"
)

func TestNewRouterKeyword(t *testing.T) {
	r, err := NewRouter(RouterConfig{Backend: BackendAuto})
	if err != nil {
		t.Fatalf("NewRouter() error: %v", err)
	}
	if _, ok := r.(*intent.KeywordRouter); !ok {
		t.Fatalf("auto without keys = %T, want *intent.KeywordRouter", r)
	}
	if got := r.Route(t.Context(), "查快递"); got != intent.Logistics {
		t.Errorf("Route() = %v", got)
	}
}

func TestNewRouterModelBackends(t *testing.T) {
	tests := []struct {
		name string
		cfg  RouterConfig
	}{
		{"auto with openai key", RouterConfig{Backend: BackendAuto, OpenAIKey: "sk"}},
		{"openai", RouterConfig{Backend: BackendOpenAI, OpenAIKey: "sk", BaseURL: "http://localhost/v1", Model: "m"}},
		{"anthropic", RouterConfig{Backend: BackendAnthropic, AnthropicKey: "ak"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRouter(tt.cfg)
			if err != nil {
				t.Fatalf("NewRouter() error: %v", err)
			}
			if _, ok := r.(*intent.LLMRouter); !ok {
				t.Errorf("router = %T, want *intent.LLMRouter", r)
			}
		})
	}
}

func TestNewRouterErrors(t *testing.T) {
	tests := []RouterConfig{
		{Backend: BackendOpenAI},
		{Backend: BackendAnthropic},
		{Backend: "carrier-pigeon"},
	}
	for _, cfg := range tests {
		if _, err := NewRouter(cfg); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("NewRouter(%+v) error = %v, want ErrInvalidInput", cfg, err)
		}
	}

	if _, err := NewRouter(RouterConfig{Backend: BackendKeyword, KeywordsFile: "/nonexistent/k.yaml"}); err == nil {
		t.Error("missing keywords file should fail")
	}
}

func TestNewRouterKeywordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - label: campus\n    keywords: [图书馆]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := NewRouter(RouterConfig{Backend: BackendKeyword, KeywordsFile: path})
	if err != nil {
		t.Fatalf("NewRouter() error: %v", err)
	}
	if got := r.Route(t.Context(), "图书馆几点开门"); got != intent.Campus {
		t.Errorf("Route() = %v, want campus", got)
	}
	// The custom table replaces the defaults.
	if got := r.Route(t.Context(), "快递"); got != intent.Fallback {
		t.Errorf("Route() = %v, want fallback", got)
	}
}
