package dsl

import "fmt"

// TokenType identifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdent  // logistics, when, reply
	TokenString // "请提供单号"

	TokenLBrace    // {
	TokenRBrace    // }
	TokenEq        // ==
	TokenAssign    // =
	TokenSemicolon // ;
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "end of file",
	TokenIllegal:   "illegal token",
	TokenIdent:     "identifier",
	TokenString:    "string",
	TokenLBrace:    "'{'",
	TokenRBrace:    "'}'",
	TokenEq:        "'=='",
	TokenAssign:    "'='",
	TokenSemicolon: "';'",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token with its source position.
//
// Keywords are not distinguished by the lexer: "INTENT", "when" and friends
// arrive as TokenIdent and the parser matches them by literal. For
// TokenString, Literal holds the raw quoted text including escapes.
type Token struct {
	Type    TokenType
	Literal string
	Line    int // 1-based
	Column  int // 1-based, in runes
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return t.Type.String()
	case TokenIdent:
		return fmt.Sprintf("%q", t.Literal)
	case TokenString:
		return "string " + t.Literal
	}
	return t.Type.String()
}

// Keywords of the rule language. They are contextual: an identifier spelled
// like a keyword is still a valid intent or variable name where the grammar
// expects IDENT.
const (
	kwIntent   = "INTENT"
	kwWhen     = "when"
	kwThen     = "then"
	kwIntentEq = "intent"
	kwContains = "contains"
	kwAlways   = "always"
	kwReply    = "reply"
	kwSet      = "set"
	kwGoto     = "goto"
)
