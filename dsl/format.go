package dsl

import (
	"strconv"
	"strings"
)

// Format prints a program as canonical source. Parsing the output yields a
// program equal to p apart from source line numbers.
func Format(p *Program) string {
	var b strings.Builder
	for i, def := range p.Intents {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(kwIntent + " " + def.Name + " {\n")
		for _, r := range def.Rules {
			b.WriteString("  ")
			b.WriteString(FormatRule(r))
			b.WriteByte('\n')
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// FormatRule prints one rule, terminator included.
func FormatRule(r Rule) string {
	return kwWhen + " " + formatCondition(r.Condition) + " " + kwThen + " " + formatAction(r.Action) + ";"
}

func formatCondition(c Condition) string {
	switch c.Kind {
	case CondIntentEquals:
		return kwIntentEq + " == " + c.Value
	case CondContains:
		return kwContains + " " + strconv.Quote(c.Value)
	case CondAlways:
		return kwAlways
	}
	return c.Kind.String()
}

func formatAction(a Action) string {
	switch a.Kind {
	case ActionReply:
		return kwReply + " " + strconv.Quote(a.Value)
	case ActionSet:
		return kwSet + " " + a.Key + " = " + strconv.Quote(a.Value)
	case ActionGoto:
		return kwGoto + " " + a.Value
	}
	return a.Kind.String()
}
