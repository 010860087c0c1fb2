package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
	"gopkg.in/yaml.v3"
)

const testScript = `
INTENT refund {
  when contains "订单" then set stage = "order";
  when contains "订单" then reply "收到，正在处理";
  when always then reply "请提供订单号";
}

INTENT fallback {
  when always then reply "您好";
}
`

func newConv(t *testing.T) *parley.Conversation {
	t.Helper()
	prog, err := dsl.Parse(testScript)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return parley.NewConversation(parley.StaticProgram(prog), intent.NewKeywordRouter())
}

func TestRunLines(t *testing.T) {
	in := strings.NewReader("你好\n\n我要退票\n订单 E1\nquit\n不会执行\n")
	var out bytes.Buffer

	if err := runLines(t.Context(), newConv(t), in, &out, false); err != nil {
		t.Fatalf("runLines() error: %v", err)
	}

	want := "您好\n请提供订单号\n收到，正在处理\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunLinesJSON(t *testing.T) {
	var out bytes.Buffer
	if err := runLines(t.Context(), newConv(t), strings.NewReader("退票\n"), &out, true); err != nil {
		t.Fatalf("runLines() error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, out.String())
	}
	if got["label"] != "refund" || got["intent"] != "refund" || got["outcome"] != "replied" {
		t.Errorf("turn = %v", got)
	}
	if got["reply"] != "请提供订单号" {
		t.Errorf("reply = %v", got["reply"])
	}
}

func TestConversationOptions(t *testing.T) {
	cfg := parley.DefaultConfig()
	if opts := conversationOptions(cfg); opts != nil {
		t.Errorf("conversationOptions() with no overrides = %d options, want none", len(opts))
	}

	cfg.Replies.UndefinedIntent = "custom"
	opts := conversationOptions(cfg)
	if len(opts) != 1 {
		t.Fatalf("conversationOptions() = %d options, want 1", len(opts))
	}

	prog, err := dsl.Parse(testScript)
	if err != nil {
		t.Fatal(err)
	}
	s := dsl.NewSession()
	s.CurrentIntent = "missing"
	opts = append(opts, parley.WithSession(s))
	conv := parley.NewConversation(parley.StaticProgram(prog), intent.RouterFunc(func(context.Context, string) intent.Label { return intent.Fallback }), opts...)

	res, err := conv.Turn(t.Context(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if res.Reply != "custom" || res.Outcome != dsl.OutcomeUndefinedIntent {
		t.Errorf("turn = %+v", res)
	}
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := parley.DefaultConfig()
	cfg.Router.OpenAIKey = "sk-test"

	if err := writeConfig(path, cfg); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got parley.Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if got.Router.OpenAIKey != "sk-test" || got.Serve.SessionTTL != cfg.Serve.SessionTTL {
		t.Errorf("round trip lost settings: %+v", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey("short"); got != "****" {
		t.Errorf("maskKey(short) = %q", got)
	}
	if got := maskKey("sk-1234567890abcd"); got != "sk-1...abcd" {
		t.Errorf("maskKey = %q", got)
	}
}

func TestIsReplCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/h", true},
		{"/session", true},
		{"/intents", true},
		{"/reset", true},
		{"/reset now", true},
		{"/退票", false},
		{"/unknown", false},
		{"/2 张票", false},
		{"/", false},
		{"我要退票", false},
	}
	for _, tt := range tests {
		if got := isReplCommand(tt.input); got != tt.want {
			t.Errorf("isReplCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
