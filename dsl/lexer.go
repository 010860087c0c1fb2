package dsl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns rule-script source into tokens. It is single-pass with one
// rune of lookahead; comments and whitespace are dropped here so the parser
// only ever sees structural tokens.
type Lexer struct {
	file  string
	src   []rune
	lines []string

	pos  int // index of the next rune to read
	line int
	col  int

	// badLine/badCol locate the first invalid UTF-8 sequence (0 if none).
	badLine, badCol int
}

// NewLexer creates a lexer over src. file is only used in error messages.
func NewLexer(file, src string) *Lexer {
	lines := strings.Split(src, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, "\r")
	}
	l := &Lexer{
		file:  file,
		src:   []rune(src),
		lines: lines,
		line:  1,
		col:   1,
	}
	if !utf8.ValidString(src) {
		l.badLine, l.badCol = invalidUTF8At(src)
	}
	return l
}

// invalidUTF8At returns the 1-based line and column of the first byte that
// does not start a valid UTF-8 sequence.
func invalidUTF8At(src string) (line, col int) {
	line, col = 1, 1
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return line, col
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return line, col
}

// Tokenize lexes the whole input. The returned slice always ends with a
// TokenEOF token when err is nil.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks, nil
		}
	}
}

// Next returns the next token. Lexical problems (a stray character, an
// unterminated string, source that is not valid UTF-8) are reported as
// *SyntaxError.
func (l *Lexer) Next() (Token, error) {
	if l.badLine > 0 {
		return Token{}, l.errorAt(l.badLine, l.badCol, "invalid UTF-8 encoding")
	}
	l.skipSpaceAndComments()

	line, col := l.line, l.col
	r, ok := l.peek()
	if !ok {
		return Token{Type: TokenEOF, Line: line, Column: col}, nil
	}

	switch {
	case isIdentStart(r):
		return Token{Type: TokenIdent, Literal: l.readIdent(), Line: line, Column: col}, nil
	case r == '"':
		lit, ok := l.readString()
		if !ok {
			return Token{}, l.errorAt(line, col, "unterminated string literal")
		}
		return Token{Type: TokenString, Literal: lit, Line: line, Column: col}, nil
	}

	l.advance()
	switch r {
	case '{':
		return Token{Type: TokenLBrace, Literal: "{", Line: line, Column: col}, nil
	case '}':
		return Token{Type: TokenRBrace, Literal: "}", Line: line, Column: col}, nil
	case ';':
		return Token{Type: TokenSemicolon, Literal: ";", Line: line, Column: col}, nil
	case '=':
		if next, ok := l.peek(); ok && next == '=' {
			l.advance()
			return Token{Type: TokenEq, Literal: "==", Line: line, Column: col}, nil
		}
		return Token{Type: TokenAssign, Literal: "=", Line: line, Column: col}, nil
	}

	return Token{}, l.errorAt(line, col, "unexpected character "+quoteRune(r))
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) peekAt(offset int) (rune, bool) {
	if l.pos+offset >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos+offset], true
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		r, ok := l.peek()
		if !ok {
			return
		}
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}
		if r == '/' {
			if next, ok := l.peekAt(1); ok && next == '/' {
				for {
					c, ok := l.peek()
					if !ok || c == '\n' {
						break
					}
					l.advance()
				}
				continue
			}
		}
		return
	}
}

func (l *Lexer) readIdent() string {
	start := l.pos
	l.advance()
	for {
		r, ok := l.peek()
		if !ok || !isIdentPart(r) {
			break
		}
		l.advance()
	}
	return string(l.src[start:l.pos])
}

// readString consumes a double-quoted literal and returns it verbatim,
// quotes and escapes included. Escapes are resolved by the parser.
func (l *Lexer) readString() (string, bool) {
	start := l.pos
	l.advance() // opening quote
	for {
		r, ok := l.peek()
		if !ok || r == '\n' {
			return string(l.src[start:l.pos]), false
		}
		l.advance()
		switch r {
		case '\\':
			if next, ok := l.peek(); !ok || next == '\n' {
				return string(l.src[start:l.pos]), false
			}
			l.advance()
		case '"':
			return string(l.src[start:l.pos]), true
		}
	}
}

// sourceLine returns the raw text of the 1-based line n.
func (l *Lexer) sourceLine(n int) string {
	if n < 1 || n > len(l.lines) {
		return ""
	}
	return l.lines[n-1]
}

func (l *Lexer) errorAt(line, col int, msg string) *SyntaxError {
	return &SyntaxError{
		File:    l.file,
		Line:    line,
		Column:  col,
		Message: msg,
		Source:  l.sourceLine(line),
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
