package dsl

import (
	"fmt"
	"log/slog"
	"strings"
)

// Default replies for the two non-error fallbacks of a step.
const (
	DefaultUndefinedIntentReply = "对不起，当前意图未定义。"
	DefaultNoMatchReply         = "抱歉，我不太明白你的意思。"
)

// Outcome describes how a step produced its reply.
type Outcome int

const (
	// OutcomeReplied means a reply rule matched.
	OutcomeReplied Outcome = iota
	// OutcomeCarryOver means no reply rule matched and the previous reply
	// was returned again.
	OutcomeCarryOver
	// OutcomeNoMatch means nothing matched and there was no previous reply.
	OutcomeNoMatch
	// OutcomeUndefinedIntent means the session's current intent is not in
	// the program. The session is left untouched.
	OutcomeUndefinedIntent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplied:
		return "replied"
	case OutcomeCarryOver:
		return "carry_over"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeUndefinedIntent:
		return "undefined_intent"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for c := OutcomeReplied; c <= OutcomeUndefinedIntent; c++ {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result is the full account of one step.
type Result struct {
	Reply   string
	Outcome Outcome

	// Intent is the current intent captured when the step began.
	Intent string

	// Effects counts set and goto actions applied in the effect phase.
	Effects int
}

// InterpreterOption configures the interpreter.
type InterpreterOption func(*Interpreter)

// WithUndefinedIntentReply overrides the reply used when the session's
// intent is not defined.
func WithUndefinedIntentReply(s string) InterpreterOption {
	return func(i *Interpreter) {
		i.undefinedReply = s
	}
}

// WithNoMatchReply overrides the reply used when nothing matched and there
// is no previous reply to repeat.
func WithNoMatchReply(s string) InterpreterOption {
	return func(i *Interpreter) {
		i.noMatchReply = s
	}
}

// WithLogger sets the logger used for step tracing and fault reports.
func WithLogger(l *slog.Logger) InterpreterOption {
	return func(i *Interpreter) {
		i.log = l
	}
}

// Interpreter executes a Program against sessions. It holds no per-session
// state and is safe to share.
type Interpreter struct {
	program        *Program
	undefinedReply string
	noMatchReply   string
	log            *slog.Logger
}

// NewInterpreter creates an interpreter for a program.
func NewInterpreter(p *Program, opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		program:        p,
		undefinedReply: DefaultUndefinedIntentReply,
		noMatchReply:   DefaultNoMatchReply,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Program returns the program being executed.
func (i *Interpreter) Program() *Program {
	return i.program
}

// Step runs one turn and returns the reply. The error is non-nil only for
// an internal consistency fault.
func (i *Interpreter) Step(s *Session, utterance string) (string, error) {
	res, err := i.Evaluate(s, utterance)
	if err != nil {
		return "", err
	}
	return res.Reply, nil
}

// Evaluate runs one turn in two passes over the current intent's rules.
//
// The effect pass applies every matching set and goto in order. The reply
// pass then returns the first matching reply, rendered against the updated
// variables. Both passes test conditions against the intent captured on
// entry, so a goto takes effect on the next step, not this one.
func (i *Interpreter) Evaluate(s *Session, utterance string) (Result, error) {
	current := s.CurrentIntent
	res := Result{Intent: current}

	def, ok := i.program.Lookup(current)
	if !ok {
		i.log.Debug("step: undefined intent", "intent", current)
		res.Reply = i.undefinedReply
		res.Outcome = OutcomeUndefinedIntent
		return res, nil
	}

	// Conditions are tested against the intent captured above. Every rule is
	// checked before any effect is applied so a fault leaves s untouched.
	matched := make([]bool, len(def.Rules))
	for n, rule := range def.Rules {
		match, err := matches(rule.Condition, utterance, current)
		if err != nil {
			return Result{}, i.fault(def.Name, n, "condition "+rule.Condition.Kind.String(), err)
		}
		switch rule.Action.Kind {
		case ActionReply, ActionSet, ActionGoto:
		default:
			return Result{}, i.fault(def.Name, n, "action "+rule.Action.Kind.String(), ErrInternalConsistency)
		}
		matched[n] = match
	}

	for n, rule := range def.Rules {
		if !matched[n] {
			continue
		}
		switch rule.Action.Kind {
		case ActionSet:
			s.SetVar(rule.Action.Key, rule.Action.Value)
			res.Effects++
		case ActionGoto:
			s.CurrentIntent = rule.Action.Value
			res.Effects++
		}
	}

	for n, rule := range def.Rules {
		if !matched[n] || rule.Action.Kind != ActionReply {
			continue
		}
		reply := Render(rule.Action.Value, s.Vars)
		s.LastReply = reply
		res.Reply = reply
		res.Outcome = OutcomeReplied
		i.log.Debug("step: replied", "intent", current, "line", rule.Line, "effects", res.Effects)
		return res, nil
	}

	if s.LastReply != "" {
		res.Reply = s.LastReply
		res.Outcome = OutcomeCarryOver
		return res, nil
	}
	res.Reply = i.noMatchReply
	res.Outcome = OutcomeNoMatch
	return res, nil
}

func (i *Interpreter) fault(intent string, rule int, kind string, err error) error {
	ierr := &InternalError{Intent: intent, Rule: rule, Kind: kind, Err: err}
	i.log.Error("interpreter fault", "intent", intent, "rule", rule, "kind", kind)
	return ierr
}

func matches(c Condition, utterance, intent string) (bool, error) {
	switch c.Kind {
	case CondIntentEquals:
		return intent == c.Value, nil
	case CondContains:
		return strings.Contains(utterance, c.Value), nil
	case CondAlways:
		return true, nil
	}
	return false, ErrInternalConsistency
}
