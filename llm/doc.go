// Package llm provides the chat model backends used by parley's LLM intent
// router.
//
// # Backends
//
// Anthropic's Messages API:
//
//	model := llm.NewAnthropic()  // Uses ANTHROPIC_API_KEY env var
//
//	// Or with custom API key and model
//	model := llm.NewAnthropic(llm.WithAPIKey("sk-..."), llm.WithModel("claude-3-haiku-20240307"))
//
// Any OpenAI-compatible chat completions endpoint:
//
//	model := llm.NewOpenAI()  // Uses OPENAI_API_KEY and OPENAI_BASE_URL
//
// Both take the same options. Classification wants short deterministic
// answers:
//
//	model := llm.NewOpenAI(llm.WithTemperature(0), llm.WithMaxTokens(8))
//
// # Rate Limiting
//
// Responses with status 429 or 529 are retried up to five times. The
// retry-after header is honored when present, otherwise the wait doubles
// from 5s up to 60s.
//
// # Implementing Custom Backends
//
// Implement the LLM interface:
//
//	type LLM interface {
//	    Generate(ctx context.Context, messages []Message) (*Response, error)
//	}
package llm
