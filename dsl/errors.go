package dsl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInternalConsistency marks an AST node the interpreter does not know how
// to evaluate. It means the parser and interpreter disagree and is never a
// user error.
var ErrInternalConsistency = errors.New("internal consistency fault")

// SyntaxError is a fatal parse error. Parsing stops at the first one.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
	Source  string // raw text of the offending line
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.File, e.Line, e.Column)
	} else {
		fmt.Fprintf(&b, "line %d, column %d: ", e.Line, e.Column)
	}
	b.WriteString(e.Message)
	if src := strings.TrimSpace(e.Source); src != "" {
		b.WriteString("\n    ")
		b.WriteString(src)
	}
	return b.String()
}

// InternalError reports an AST node of unknown kind found while stepping.
type InternalError struct {
	Intent string
	Rule   int // index of the rule within the intent
	Kind   string
	Err    error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("intent %s rule %d: %s: %v", e.Intent, e.Rule, e.Kind, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
