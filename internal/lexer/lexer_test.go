package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/gothird/internal/lexer"
)

func tokenKinds(src string) ([]lexer.Kind, []string) {
	l := lexer.New(strings.NewReader(src), "test")
	var kinds []lexer.Kind
	var texts []string
	for {
		tok := l.Next()
		if tok.Kind == lexer.EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}
	return kinds, texts
}

func TestIdentsAndSymbols(t *testing.T) {
	kinds, texts := tokenKinds("x = y + 1;")
	assert.Equal(t, []lexer.Kind{lexer.Ident, lexer.Symbol, lexer.Ident, lexer.Symbol, lexer.Int, lexer.Symbol}, kinds)
	assert.Equal(t, []string{"x", "=", "y", "+", "1", ";"}, texts)
}

func TestEqualityOperatorsMerge(t *testing.T) {
	_, texts := tokenKinds("a == b != c")
	assert.Equal(t, []string{"a", "==", "b", "!=", "c"}, texts)
}

func TestFloatAndString(t *testing.T) {
	kinds, texts := tokenKinds(`3.14 "hello"`)
	assert.Equal(t, []lexer.Kind{lexer.Float, lexer.String}, kinds)
	assert.Equal(t, "3.14", texts[0])
	assert.Equal(t, `"hello"`, texts[1])
}

func TestCommentsAreSkipped(t *testing.T) {
	kinds, texts := tokenKinds("x // a comment\n= 1")
	assert.Equal(t, []lexer.Kind{lexer.Ident, lexer.Symbol, lexer.Int}, kinds)
	assert.Equal(t, []string{"x", "=", "1"}, texts)
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := lexer.New(strings.NewReader("a b c"), "test")
	first := l.Peek(0)
	second := l.Peek(1)
	assert.Equal(t, "a", first.Text)
	assert.Equal(t, "b", second.Text)

	// Peek again should not have advanced anything.
	assert.Equal(t, "a", l.Peek(0).Text)
	assert.Equal(t, "a", l.Next().Text)
	assert.Equal(t, "b", l.Next().Text)
	assert.Equal(t, "c", l.Next().Text)
}

func TestEOFIsSticky(t *testing.T) {
	l := lexer.New(strings.NewReader("x"), "test")
	assert.Equal(t, "x", l.Next().Text)
	assert.Equal(t, lexer.EOF, l.Next().Kind)
	assert.Equal(t, lexer.EOF, l.Next().Kind)
}
