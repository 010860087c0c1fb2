package intent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/everydev1618/parley/llm"
)

// fakeLLM answers every request with content, or fails with err.
type fakeLLM struct {
	content string
	err     error
	calls   atomic.Int32
	last    []llm.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	f.calls.Add(1)
	f.last = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content}, nil
}

func TestLLMRouterParsesLabel(t *testing.T) {
	tests := []struct {
		content string
		want    Label
	}{
		{"logistics", Logistics},
		{" Refund\n", Refund},
		{"campus", Campus},
		{"fallback", Fallback},
		{"I think it is refund", Fallback},
	}
	for _, tt := range tests {
		model := &fakeLLM{content: tt.content}
		r, err := NewLLMRouter(model)
		if err != nil {
			t.Fatalf("NewLLMRouter() error: %v", err)
		}
		if got := r.Route(t.Context(), "text"); got != tt.want {
			t.Errorf("content %q routed to %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestLLMRouterPrompt(t *testing.T) {
	model := &fakeLLM{content: "campus"}
	r, err := NewLLMRouter(model)
	if err != nil {
		t.Fatal(err)
	}
	r.Route(t.Context(), "选课")

	if len(model.last) != 2 {
		t.Fatalf("sent %d messages, want 2", len(model.last))
	}
	sys := model.last[0]
	if sys.Role != llm.RoleSystem || !strings.HasSuffix(sys.Content, "logistics, refund, campus, fallback") {
		t.Errorf("system message = %+v", sys)
	}
	if model.last[1].Role != llm.RoleUser || model.last[1].Content != "选课" {
		t.Errorf("user message = %+v", model.last[1])
	}
}

func TestLLMRouterFallsBackOnError(t *testing.T) {
	model := &fakeLLM{err: errors.New("connection refused")}
	r, err := NewLLMRouter(model)
	if err != nil {
		t.Fatal(err)
	}

	// Default fallback is the keyword table.
	if got := r.Route(t.Context(), "我的包裹呢"); got != Logistics {
		t.Errorf("Route() = %v, want logistics via keyword fallback", got)
	}

	custom, err := NewLLMRouter(model, WithFallbackRouter(RouterFunc(func(context.Context, string) Label {
		return Campus
	})))
	if err != nil {
		t.Fatal(err)
	}
	if got := custom.Route(t.Context(), "anything"); got != Campus {
		t.Errorf("Route() = %v, want campus from custom fallback", got)
	}

	none, err := NewLLMRouter(model, WithFallbackRouter(nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := none.Route(t.Context(), "我的包裹呢"); got != Fallback {
		t.Errorf("Route() = %v, want fallback with no fallback router", got)
	}
}

func TestLLMRouterCache(t *testing.T) {
	model := &fakeLLM{content: "refund"}
	r, err := NewLLMRouter(model, WithCacheSize(8))
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		r.Route(t.Context(), "退款")
	}
	r.Route(t.Context(), "another")
	if n := model.calls.Load(); n != 2 {
		t.Errorf("model called %d times, want 2", n)
	}

	uncached, err := NewLLMRouter(model, WithCacheSize(0))
	if err != nil {
		t.Fatal(err)
	}
	uncached.Route(t.Context(), "退款")
	uncached.Route(t.Context(), "退款")
	if n := model.calls.Load(); n != 4 {
		t.Errorf("model called %d times, want 4", n)
	}
}

func TestLLMRouterErrorsAreNotCached(t *testing.T) {
	model := &fakeLLM{err: errors.New("boom")}
	r, err := NewLLMRouter(model)
	if err != nil {
		t.Fatal(err)
	}
	r.Route(t.Context(), "hi")
	model.err = nil
	model.content = "campus"
	if got := r.Route(t.Context(), "hi"); got != Campus {
		t.Errorf("Route() after recovery = %v, want campus", got)
	}
}

// blockingLLM waits for the context to end.
type blockingLLM struct{}

func (blockingLLM) Generate(ctx context.Context, _ []llm.Message) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLLMRouterTimeout(t *testing.T) {
	r, err := NewLLMRouter(blockingLLM{}, WithRouteTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if got := r.Route(t.Context(), "退票"); got != Refund {
		t.Errorf("Route() = %v, want refund via keyword fallback", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Route() took %v, timeout not applied", elapsed)
	}
}
