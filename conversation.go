package parley

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
)

// ProgramSource supplies the program for each turn. *dsl.Loader implements
// it, so a conversation picks up hot-reloaded scripts on its next turn.
type ProgramSource interface {
	Program() *dsl.Program
}

var _ ProgramSource = (*dsl.Loader)(nil)

type staticProgram struct {
	p *dsl.Program
}

func (s staticProgram) Program() *dsl.Program { return s.p }

// StaticProgram wraps a program that never changes.
func StaticProgram(p *dsl.Program) ProgramSource {
	return staticProgram{p: p}
}

// TurnResult is what one turn of a conversation produced.
type TurnResult struct {
	Utterance string       `json:"utterance"`
	Label     intent.Label `json:"label"`

	// Intent is the intent the script was evaluated under, after the
	// stickiness policy was applied to Label.
	Intent  string      `json:"intent"`
	Reply   string      `json:"reply"`
	Outcome dsl.Outcome `json:"outcome"`
	Effects int         `json:"effects"`

	Duration time.Duration `json:"-"`
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithInterpreterOptions passes options to the interpreter used for each turn.
func WithInterpreterOptions(opts ...dsl.InterpreterOption) ConversationOption {
	return func(c *Conversation) {
		c.interpOpts = append(c.interpOpts, opts...)
	}
}

// WithSession starts the conversation from an existing session state.
func WithSession(s *dsl.Session) ConversationOption {
	return func(c *Conversation) {
		c.session = s
	}
}

// Conversation runs turns against one session: route the utterance, apply
// stickiness, then step the script. Turns are serialized, so a Conversation
// may be shared between goroutines.
type Conversation struct {
	mu         sync.Mutex
	src        ProgramSource
	router     intent.Router
	session    *dsl.Session
	interpOpts []dsl.InterpreterOption
}

// NewConversation creates a conversation over src, classifying each
// utterance with router.
func NewConversation(src ProgramSource, router intent.Router, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		src:     src,
		router:  router,
		session: dsl.NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Turn runs one turn. The error is ErrEmptyUtterance, ErrScriptNotFound
// when no program is loaded, or an internal consistency fault from the
// interpreter.
func (c *Conversation) Turn(ctx context.Context, utterance string) (TurnResult, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return TurnResult{}, ErrEmptyUtterance
	}

	prog := c.src.Program()
	if prog == nil {
		return TurnResult{}, fmt.Errorf("%w: no program loaded", ErrScriptNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	label := c.router.Route(ctx, utterance)
	c.session.CurrentIntent = intent.Stick(c.session.CurrentIntent, label)
	res, err := dsl.NewInterpreter(prog, c.interpOpts...).Evaluate(c.session, utterance)
	if err != nil {
		return TurnResult{}, err
	}

	return TurnResult{
		Utterance: utterance,
		Label:     label,
		Intent:    res.Intent,
		Reply:     res.Reply,
		Outcome:   res.Outcome,
		Effects:   res.Effects,
		Duration:  time.Since(start),
	}, nil
}

// Session returns a snapshot of the session state.
func (c *Conversation) Session() *dsl.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Reset discards all session state.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = dsl.NewSession()
}

// IsExitCommand reports whether a console line asks to end the
// conversation: exit, quit or q in any case.
func IsExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit", "q":
		return true
	}
	return false
}
