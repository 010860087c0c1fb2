package dsl

import "fmt"

// Warning is a non-fatal finding about a program that parsed cleanly.
type Warning struct {
	Intent  string
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d (intent %s): %s", w.Line, w.Intent, w.Message)
}

// Lint reports rules that are legal but almost certainly mistakes: goto
// targets missing from the program, intent tests that can never be true
// inside their own block, and replies shadowed by an earlier unconditional
// reply.
func Lint(p *Program) []Warning {
	var warns []Warning
	for _, def := range p.Intents {
		shadowedBy := 0
		for _, r := range def.Rules {
			if r.Action.Kind == ActionGoto {
				if _, ok := p.Lookup(r.Action.Value); !ok {
					warns = append(warns, Warning{
						Intent:  def.Name,
						Line:    r.Line,
						Message: fmt.Sprintf("goto %s: intent is not defined", r.Action.Value),
					})
				}
			}

			if r.Condition.Kind == CondIntentEquals && r.Condition.Value != def.Name {
				warns = append(warns, Warning{
					Intent:  def.Name,
					Line:    r.Line,
					Message: fmt.Sprintf("intent == %s can never match inside intent %s", r.Condition.Value, def.Name),
				})
			}

			if r.Action.Kind != ActionReply {
				continue
			}
			if shadowedBy > 0 {
				warns = append(warns, Warning{
					Intent:  def.Name,
					Line:    r.Line,
					Message: fmt.Sprintf("reply is unreachable after unconditional reply on line %d", shadowedBy),
				})
				continue
			}
			if alwaysTrue(r.Condition, def.Name) {
				shadowedBy = r.Line
			}
		}
	}
	return warns
}

func alwaysTrue(c Condition, intent string) bool {
	switch c.Kind {
	case CondAlways:
		return true
	case CondIntentEquals:
		return c.Value == intent
	case CondContains:
		return c.Value == ""
	}
	return false
}
