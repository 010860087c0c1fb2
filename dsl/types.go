package dsl

import "fmt"

// ConditionKind selects how a rule's condition is tested.
type ConditionKind int

const (
	condInvalid ConditionKind = iota
	CondIntentEquals
	CondContains
	CondAlways
)

func (k ConditionKind) String() string {
	switch k {
	case CondIntentEquals:
		return "intent"
	case CondContains:
		return "contains"
	case CondAlways:
		return "always"
	}
	return fmt.Sprintf("condition(%d)", int(k))
}

// ActionKind selects what a rule does when its condition holds.
type ActionKind int

const (
	actionInvalid ActionKind = iota
	ActionReply
	ActionSet
	ActionGoto
)

func (k ActionKind) String() string {
	switch k {
	case ActionReply:
		return "reply"
	case ActionSet:
		return "set"
	case ActionGoto:
		return "goto"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Condition is the "when" half of a rule.
type Condition struct {
	Kind ConditionKind

	// Value is the intent name for CondIntentEquals, the substring for
	// CondContains and empty for CondAlways.
	Value string
}

// Action is the "then" half of a rule.
type Action struct {
	Kind ActionKind

	// Key is the variable name; only used by ActionSet.
	Key string

	// Value is the reply template, the assigned value or the goto target.
	Value string
}

// Rule is one conditional action. Order within an intent is significant.
type Rule struct {
	Condition Condition
	Action    Action

	// Line is the source line of the rule's "when" keyword.
	Line int
}

// IntentDef is a named, ordered list of rules.
type IntentDef struct {
	Name  string
	Rules []Rule
	Line  int
}

// Program is a parsed rule script. It is built once by Parse and must not
// be modified afterwards; a single Program may be shared by any number of
// sessions without locking.
type Program struct {
	Intents []IntentDef

	index map[string]int
}

// NewProgram builds a Program from already-constructed intents. Names must
// be unique; the last definition of a repeated name wins the lookup.
func NewProgram(intents []IntentDef) *Program {
	p := &Program{Intents: intents}
	p.buildIndex()
	return p
}

func (p *Program) buildIndex() {
	p.index = make(map[string]int, len(p.Intents))
	for i, def := range p.Intents {
		p.index[def.Name] = i
	}
}

// Lookup returns the intent with the given name.
func (p *Program) Lookup(name string) (*IntentDef, bool) {
	if p == nil {
		return nil, false
	}
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return &p.Intents[i], true
}

// Names returns intent names in declaration order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Intents))
	for _, def := range p.Intents {
		names = append(names, def.Name)
	}
	return names
}

// RuleCount returns the total number of rules across all intents.
func (p *Program) RuleCount() int {
	n := 0
	for _, def := range p.Intents {
		n += len(def.Rules)
	}
	return n
}
