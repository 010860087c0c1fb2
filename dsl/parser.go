package dsl

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parser parses rule scripts.
type Parser struct {
	// BaseDir for resolving relative paths in ParseFile
	BaseDir string
}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a rule script.
func (p *Parser) ParseFile(path string) (*Program, error) {
	if p.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(p.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return parse(filepath.Base(path), string(data))
}

// Parse parses script source into a Program.
func (p *Parser) Parse(data []byte) (*Program, error) {
	return parse("", string(data))
}

// Parse is shorthand for NewParser().Parse([]byte(src)).
func Parse(src string) (*Program, error) {
	return parse("", src)
}

func parse(file, src string) (*Program, error) {
	lex := NewLexer(file, src)
	toks, err := lex.Tokenize()
	if err != nil {
		return nil, err
	}

	ps := &parser{lex: lex, toks: toks}
	intents, err := ps.parseProgram()
	if err != nil {
		return nil, err
	}
	return NewProgram(intents), nil
}

// parser is the recursive-descent state for one Parse call. The grammar is
// flat enough that one token of lookahead decides every production.
type parser struct {
	lex  *Lexer
	toks []Token
	pos  int
}

func (p *parser) cur() Token {
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) prev() Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *parser) atKeyword(kw string) bool {
	tok := p.cur()
	return tok.Type == TokenIdent && tok.Literal == kw
}

func (p *parser) errorAt(tok Token, format string, args ...any) *SyntaxError {
	return p.lex.errorAt(tok.Line, tok.Column, fmt.Sprintf(format, args...))
}

// program := intent_def*
func (p *parser) parseProgram() ([]IntentDef, error) {
	var intents []IntentDef
	seen := make(map[string]int)

	for p.cur().Type != TokenEOF {
		if !p.atKeyword(kwIntent) {
			return nil, p.errorAt(p.cur(), "expected INTENT, got %s", p.cur())
		}
		header := p.cur()
		def, err := p.parseIntent()
		if err != nil {
			return nil, err
		}
		if line, dup := seen[def.Name]; dup {
			return nil, p.errorAt(header, "intent %q already defined on line %d", def.Name, line)
		}
		seen[def.Name] = def.Line
		intents = append(intents, def)
	}
	return intents, nil
}

// intent_def := "INTENT" IDENT "{" rule* "}"
func (p *parser) parseIntent() (IntentDef, error) {
	header := p.advance()

	name := p.cur()
	if name.Type != TokenIdent {
		return IntentDef{}, p.errorAt(name, "expected intent name after INTENT, got %s", name)
	}
	p.advance()

	if p.cur().Type != TokenLBrace {
		return IntentDef{}, p.errorAt(p.cur(), "expected '{' after INTENT %s, got %s", name.Literal, p.cur())
	}
	p.advance()

	def := IntentDef{Name: name.Literal, Line: header.Line}
	for {
		switch {
		case p.cur().Type == TokenRBrace:
			p.advance()
			return def, nil
		case p.cur().Type == TokenEOF:
			return IntentDef{}, p.errorAt(header, "intent %s is missing closing '}'", name.Literal)
		case p.atKeyword(kwIntent):
			return IntentDef{}, p.errorAt(p.cur(), "intent %s is missing closing '}' before next INTENT", name.Literal)
		}

		rule, err := p.parseRule()
		if err != nil {
			return IntentDef{}, err
		}
		def.Rules = append(def.Rules, rule)
	}
}

// rule := "when" condition "then" action ";"
func (p *parser) parseRule() (Rule, error) {
	if !p.atKeyword(kwWhen) {
		return Rule{}, p.errorAt(p.cur(), "rule must start with 'when', got %s", p.cur())
	}
	when := p.advance()

	cond, err := p.parseCondition()
	if err != nil {
		return Rule{}, err
	}

	if !p.atKeyword(kwThen) {
		return Rule{}, p.errorAt(p.cur(), "expected 'then' after condition, got %s", p.cur())
	}
	p.advance()

	act, err := p.parseAction()
	if err != nil {
		return Rule{}, err
	}

	if p.cur().Type != TokenSemicolon {
		// Point at the end of the rule rather than whatever follows it,
		// which is usually on the next line.
		last := p.prev()
		return Rule{}, p.errorAt(last, "rule is missing terminating ';'")
	}
	p.advance()

	return Rule{Condition: cond, Action: act, Line: when.Line}, nil
}

// condition := "intent" "==" IDENT | "contains" STRING | "always"
func (p *parser) parseCondition() (Condition, error) {
	tok := p.cur()
	if tok.Type == TokenIdent {
		switch tok.Literal {
		case kwIntentEq:
			p.advance()
			if p.cur().Type != TokenEq {
				return Condition{}, p.errorAt(p.cur(), "expected '==' after 'intent', got %s", p.cur())
			}
			p.advance()
			name := p.cur()
			if name.Type != TokenIdent {
				return Condition{}, p.errorAt(name, "expected intent name after 'intent ==', got %s", name)
			}
			p.advance()
			return Condition{Kind: CondIntentEquals, Value: name.Literal}, nil

		case kwContains:
			p.advance()
			s, err := p.parseString("contains")
			if err != nil {
				return Condition{}, err
			}
			return Condition{Kind: CondContains, Value: s}, nil

		case kwAlways:
			p.advance()
			return Condition{Kind: CondAlways}, nil
		}
	}
	return Condition{}, p.errorAt(tok, "unknown condition %s; want intent == NAME, contains \"...\" or always", tok)
}

// action := "reply" STRING | "set" IDENT "=" STRING | "goto" IDENT
func (p *parser) parseAction() (Action, error) {
	tok := p.cur()
	if tok.Type == TokenIdent {
		switch tok.Literal {
		case kwReply:
			p.advance()
			s, err := p.parseString("reply")
			if err != nil {
				return Action{}, err
			}
			return Action{Kind: ActionReply, Value: s}, nil

		case kwSet:
			p.advance()
			key := p.cur()
			if key.Type != TokenIdent {
				return Action{}, p.errorAt(key, "expected variable name after 'set', got %s", key)
			}
			p.advance()
			if p.cur().Type != TokenAssign {
				return Action{}, p.errorAt(p.cur(), "expected '=' after 'set %s', got %s", key.Literal, p.cur())
			}
			p.advance()
			s, err := p.parseString("set " + key.Literal)
			if err != nil {
				return Action{}, err
			}
			return Action{Kind: ActionSet, Key: key.Literal, Value: s}, nil

		case kwGoto:
			p.advance()
			target := p.cur()
			if target.Type != TokenIdent {
				return Action{}, p.errorAt(target, "expected intent name after 'goto', got %s", target)
			}
			p.advance()
			return Action{Kind: ActionGoto, Value: target.Literal}, nil
		}
	}
	return Action{}, p.errorAt(tok, "unknown action %s; want reply \"...\", set NAME = \"...\" or goto NAME", tok)
}

func (p *parser) parseString(context string) (string, error) {
	tok := p.cur()
	if tok.Type != TokenString {
		return "", p.errorAt(tok, "expected string after '%s', got %s", context, tok)
	}
	s, err := unquote(tok.Literal)
	if err != nil {
		return "", p.errorAt(tok, "malformed string literal %s", tok.Literal)
	}
	p.advance()
	return s, nil
}

// unquote resolves escape sequences in a double-quoted literal. Anything
// that is not an escape, including non-ASCII text, is kept verbatim. \'
// is accepted as a plain quote on top of the Go escape set.
func unquote(lit string) (string, error) {
	if !strings.Contains(lit, `\'`) {
		return strconv.Unquote(lit)
	}

	var b strings.Builder
	b.Grow(len(lit))
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c == '\\' && i+1 < len(lit) {
			i++
			if lit[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte(c)
		}
		b.WriteByte(lit[i])
	}
	return strconv.Unquote(b.String())
}
