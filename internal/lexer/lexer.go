// Package lexer tokenizes Dusty source text on top of the standard
// library's text/scanner, the same foundation db47h-ngaro's assembler
// (asm.parser) builds on. Dusty's own grammar needs no custom rune
// classes beyond what text/scanner already provides for idents, ints,
// floats, and quoted strings; the only work left for this package is
// merging "==" and "!=" out of scanner's single-rune punctuation and
// buffering enough lookahead for the parser to disambiguate a statement's
// opening identifier.
package lexer

import (
	"io"
	"text/scanner"

	"github.com/jcorbin/gothird/internal/ast"
)

// Kind classifies a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	Symbol
)

// Token is one lexical token: its text exactly as it appeared in source
// (quotes included for strings), and its starting position.
type Token struct {
	Kind Kind
	Text string
	Pos  ast.Pos
}

// Lexer wraps a text/scanner.Scanner with arbitrary lookahead.
type Lexer struct {
	s    scanner.Scanner
	buf  []Token
	errs []string
}

// New returns a Lexer reading from src, reporting positions under name.
func New(src io.Reader, name string) *Lexer {
	l := &Lexer{}
	l.s.Init(src)
	l.s.Filename = name
	l.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	l.s.Error = func(_ *scanner.Scanner, msg string) { l.errs = append(l.errs, msg) }
	return l
}

// Errs returns any low-level scan errors (e.g. an unterminated string)
// reported by text/scanner itself, distinct from the parser's own
// grammar-level errors.
func (l *Lexer) Errs() []string { return l.errs }

// Peek returns the token n positions ahead without consuming it; Peek(0)
// is the next token Next would return.
func (l *Lexer) Peek(n int) Token {
	for len(l.buf) <= n {
		l.buf = append(l.buf, l.scan())
	}
	return l.buf[n]
}

// Next consumes and returns the next token.
func (l *Lexer) Next() Token {
	t := l.Peek(0)
	l.buf = l.buf[1:]
	return t
}

func (l *Lexer) scan() Token {
	r := l.s.Scan()
	pos := ast.Pos{Line: l.s.Position.Line, Col: l.s.Position.Column}
	if pos.Line == 0 {
		pos = ast.Pos{Line: l.s.Pos().Line, Col: l.s.Pos().Column}
	}
	switch r {
	case scanner.EOF:
		return Token{EOF, "", pos}
	case scanner.Ident:
		return Token{Ident, l.s.TokenText(), pos}
	case scanner.Int:
		return Token{Int, l.s.TokenText(), pos}
	case scanner.Float:
		return Token{Float, l.s.TokenText(), pos}
	case scanner.String:
		return Token{String, l.s.TokenText(), pos}
	case '=':
		if l.s.Peek() == '=' {
			l.s.Next()
			return Token{Symbol, "==", pos}
		}
		return Token{Symbol, "=", pos}
	case '!':
		if l.s.Peek() == '=' {
			l.s.Next()
			return Token{Symbol, "!=", pos}
		}
		return Token{Symbol, "!", pos}
	default:
		return Token{Symbol, string(r), pos}
	}
}
