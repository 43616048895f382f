// Package parser implements Dusty's hand-rolled recursive-descent parser,
// producing the ast.Node tree internal/translate consumes. Grammar and
// parsing are explicitly outside the core's scope (spec §6.1 treats the
// parse tree as an external contract), so this package is the one place
// in the module built directly on the standard library: no example repo
// in the retrieved set wires a parser-generator or combinator library for
// a grammar this small, and db47h-ngaro's own assembler (internal/lexer's
// model) hand-rolls its parser the same way over text/scanner.
package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/jcorbin/gothird/internal/ast"
	"github.com/jcorbin/gothird/internal/lexer"
	"github.com/jcorbin/gothird/internal/panicerr"
)

// SyntaxError is raised for any grammar violation: an unexpected token,
// or reaching EOF mid-construct.
type SyntaxError struct {
	Pos ast.Pos
	Msg string
}

func (e SyntaxError) Error() string { return fmt.Sprintf("%v: %s", e.Pos, e.Msg) }

// Parse reads a complete Dusty program from src and returns its parse
// tree, or the first syntax error encountered.
func Parse(src io.Reader, filename string) (*ast.Node, error) {
	p := &parser{lex: lexer.New(src, filename)}

	var root *ast.Node
	err := panicerr.Recover("parse", func() error {
		root = p.parseProgram()
		return nil
	})
	if err == nil {
		return root, nil
	}

	var se SyntaxError
	if errors.As(err, &se) {
		return nil, se
	}
	return nil, err
}

type parser struct {
	lex *lexer.Lexer
}

func (p *parser) fail(pos ast.Pos, format string, args ...interface{}) {
	panic(SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) cur() lexer.Token   { return p.lex.Peek(0) }
func (p *parser) peek1() lexer.Token { return p.lex.Peek(1) }

func (p *parser) advance() lexer.Token { return p.lex.Next() }

func (p *parser) pos() ast.Pos { return p.cur().Pos }

func (p *parser) isKeyword(t lexer.Token, kw string) bool {
	return t.Kind == lexer.Ident && t.Text == kw
}

func (p *parser) expectKeyword(kw string) lexer.Token {
	t := p.cur()
	if !p.isKeyword(t, kw) {
		p.fail(t.Pos, "expected %q, got %q", kw, t.Text)
	}
	return p.advance()
}

func (p *parser) expectIdent() lexer.Token {
	t := p.cur()
	if t.Kind != lexer.Ident {
		p.fail(t.Pos, "expected identifier, got %q", t.Text)
	}
	return p.advance()
}

func (p *parser) expectType() lexer.Token {
	t := p.cur()
	if t.Kind != lexer.Ident || (t.Text != "int" && t.Text != "float") {
		p.fail(t.Pos, "expected type (int or float), got %q", t.Text)
	}
	return p.advance()
}

func (p *parser) expectSymbol(sym string) lexer.Token {
	t := p.cur()
	if t.Kind != lexer.Symbol || t.Text != sym {
		p.fail(t.Pos, "expected %q, got %q", sym, t.Text)
	}
	return p.advance()
}

func (p *parser) atSymbol(sym string) bool {
	t := p.cur()
	return t.Kind == lexer.Symbol && t.Text == sym
}

// --- program structure ---

func (p *parser) parseProgram() *ast.Node {
	p.expectKeyword("program")
	nameTok := p.expectIdent()
	p.expectSymbol(";")

	prog := ast.New(ast.Program, nameTok.Text, nameTok.Pos)

	if p.isKeyword(p.cur(), "vars") {
		prog.Append(p.parseVars())
	}
	if p.isKeyword(p.cur(), "void") {
		prog.Append(p.parseFuncs())
	}

	beginTok := p.expectKeyword("begin")
	prog.Append(ast.New(ast.BeginKw, "begin", beginTok.Pos))

	prog.Append(p.parseBody(func(t lexer.Token) bool { return p.isKeyword(t, "end") }))

	endTok := p.expectKeyword("end")
	if p.atSymbol(";") {
		p.advance()
	}
	prog.Append(ast.New(ast.EndKw, "end", endTok.Pos))

	return prog
}

func (p *parser) parseVars() *ast.Node {
	pos := p.pos()
	p.expectKeyword("vars")
	vars := ast.New(ast.Vars, "", pos)
	for p.cur().Kind == lexer.Ident && !p.isKeyword(p.cur(), "void") && !p.isKeyword(p.cur(), "begin") {
		vars.Append(p.parseTypeVar())
	}
	return vars
}

func (p *parser) parseTypeVar() *ast.Node {
	pos := p.pos()
	idList := p.parseIDList()
	p.expectSymbol(":")
	typeTok := p.expectType()
	p.expectSymbol(";")
	return ast.New(ast.TypeVar, typeTok.Text, pos, idList)
}

func (p *parser) parseIDList() *ast.Node {
	pos := p.pos()
	first := p.expectIdent()
	list := ast.New(ast.IDList, "", pos, ast.New(ast.ID, first.Text, first.Pos))
	for p.atSymbol(",") {
		p.advance()
		idTok := p.expectIdent()
		list.Append(ast.New(ast.ID, idTok.Text, idTok.Pos))
	}
	return list
}

func (p *parser) parseFuncs() *ast.Node {
	pos := p.pos()
	funcs := ast.New(ast.Funcs, "", pos)
	for p.isKeyword(p.cur(), "void") {
		funcs.Append(p.parseFunc())
	}
	return funcs
}

// A function declaration is represented as an "id" node (spec §6.1's
// contract has no dedicated label for it); see internal/translate for
// why.
func (p *parser) parseFunc() *ast.Node {
	p.expectKeyword("void")
	nameTok := p.expectIdent()
	fn := ast.New(ast.ID, nameTok.Text, nameTok.Pos)

	p.expectSymbol("(")
	params := ast.New(ast.Parameters, "", p.pos())
	if !p.atSymbol(")") {
		idt := ast.New(ast.IDTypeList, "", p.pos())
		idt.Append(p.parseParam())
		for p.atSymbol(",") {
			p.advance()
			idt.Append(p.parseParam())
		}
		params.Append(idt)
	}
	p.expectSymbol(")")
	fn.Append(params)

	p.expectSymbol("{")
	body := p.parseBody(func(t lexer.Token) bool { return t.Kind == lexer.Symbol && t.Text == "}" })
	p.expectSymbol("}")
	if p.atSymbol(";") {
		p.advance()
	}
	fn.Append(ast.New(ast.FuncBody, "", fn.Pos, body))

	return fn
}

func (p *parser) parseParam() *ast.Node {
	nameTok := p.expectIdent()
	p.expectSymbol(":")
	typeTok := p.expectType()
	return ast.New(ast.ID, nameTok.Text, nameTok.Pos, ast.New(ast.TypeVar, typeTok.Text, typeTok.Pos))
}

// --- statements ---

func (p *parser) parseBody(stop func(lexer.Token) bool) *ast.Node {
	pos := p.pos()
	body := ast.New(ast.Body, "", pos)
	for !stop(p.cur()) && p.cur().Kind != lexer.EOF {
		body.Append(p.parseStatement())
	}
	return body
}

func (p *parser) parseStatement() *ast.Node {
	pos := p.pos()
	stmt := ast.New(ast.Statement, "", pos)

	cur := p.cur()
	switch {
	case p.isKeyword(cur, "if"):
		stmt.Append(p.parseCondition())
	case p.isKeyword(cur, "while"):
		stmt.Append(p.parseWhile())
	case p.isKeyword(cur, "print"):
		stmt.Append(p.parsePrint())
		p.expectSymbol(";")
	case cur.Kind == lexer.Ident && p.peek1().Kind == lexer.Symbol && p.peek1().Text == "(":
		stmt.Append(p.parseCall())
		p.expectSymbol(";")
	case cur.Kind == lexer.Ident:
		stmt.Append(p.parseAssign())
	default:
		p.fail(cur.Pos, "expected a statement, got %q", cur.Text)
	}
	return stmt
}

func (p *parser) parseAssign() *ast.Node {
	nameTok := p.expectIdent()
	idNode := ast.New(ast.ID, nameTok.Text, nameTok.Pos)
	eqTok := p.expectSymbol("=")
	eqNode := ast.New(ast.EqualsTok, eqTok.Text, eqTok.Pos)
	expr := p.parseExpression()
	p.expectSymbol(";")
	return ast.New(ast.Assign, "", nameTok.Pos, idNode, eqNode, expr)
}

func (p *parser) parseCondition() *ast.Node {
	pos := p.pos()
	p.expectKeyword("if")
	p.expectSymbol("(")
	cond := p.parseExpression()
	p.expectSymbol(")")
	p.expectSymbol("{")
	ifBody := p.parseBody(func(t lexer.Token) bool { return t.Kind == lexer.Symbol && t.Text == "}" })
	p.expectSymbol("}")

	children := []*ast.Node{cond, ifBody}
	if p.isKeyword(p.cur(), "else") {
		elseTok := p.advance()
		children = append(children, ast.New(ast.ElseKw, "else", elseTok.Pos))
		p.expectSymbol("{")
		elseBody := p.parseBody(func(t lexer.Token) bool { return t.Kind == lexer.Symbol && t.Text == "}" })
		p.expectSymbol("}")
		children = append(children, elseBody)
	}
	if p.atSymbol(";") {
		p.advance()
	}
	return ast.New(ast.Condition, "", pos, children...)
}

func (p *parser) parseWhile() *ast.Node {
	pos := p.pos()
	p.expectKeyword("while")
	p.expectSymbol("(")
	cond := p.parseExpression()
	p.expectSymbol(")")
	doTok := p.expectKeyword("do")
	doNode := ast.New(ast.DoKw, "do", doTok.Pos)
	p.expectSymbol("{")
	body := p.parseBody(func(t lexer.Token) bool { return t.Kind == lexer.Symbol && t.Text == "}" })
	p.expectSymbol("}")
	if p.atSymbol(";") {
		p.advance()
	}
	return ast.New(ast.WhileLoop, "", pos, cond, doNode, body)
}

func (p *parser) parsePrint() *ast.Node {
	pos := p.pos()
	p.expectKeyword("print")
	p.expectSymbol("(")
	print := ast.New(ast.Print, "", pos, p.parsePrintElement())
	for p.atSymbol(",") {
		p.advance()
		print.Append(p.parsePrintElement())
	}
	p.expectSymbol(")")
	return print
}

func (p *parser) parsePrintElement() *ast.Node {
	pos := p.pos()
	if p.cur().Kind == lexer.String {
		tok := p.advance()
		return ast.New(ast.PrintElem, "", pos, ast.New(ast.StringLit, tok.Text, tok.Pos))
	}
	return ast.New(ast.PrintElem, "", pos, p.parseExpression())
}

func (p *parser) parseCall() *ast.Node {
	nameTok := p.expectIdent()
	idNode := ast.New(ast.ID, nameTok.Text, nameTok.Pos)
	p.expectSymbol("(")
	call := ast.New(ast.FuncCall, "", nameTok.Pos, idNode)
	if !p.atSymbol(")") {
		call.Append(p.parseExpression())
		for p.atSymbol(",") {
			p.advance()
			call.Append(p.parseExpression())
		}
	}
	p.expectSymbol(")")
	return call
}

// --- expressions ---

var comparators = map[string]bool{"<": true, ">": true, "==": true, "!=": true}

func (p *parser) parseExpression() *ast.Node {
	pos := p.pos()
	left := p.parseExp()
	cur := p.cur()
	if cur.Kind == lexer.Symbol && comparators[cur.Text] {
		cmpTok := p.advance()
		right := p.parseExp()
		return ast.New(ast.Expression, "", pos, left, ast.New(ast.Comparator, cmpTok.Text, cmpTok.Pos), right)
	}
	return ast.New(ast.Expression, "", pos, left)
}

func (p *parser) parseExp() *ast.Node {
	pos := p.pos()
	children := []*ast.Node{p.parseTerm()}
	for p.atSymbol("+") || p.atSymbol("-") {
		opTok := p.advance()
		children = append(children, ast.New(ast.OperatorTok, opTok.Text, opTok.Pos), p.parseTerm())
	}
	return ast.New(ast.Exp, "", pos, children...)
}

func (p *parser) parseTerm() *ast.Node {
	pos := p.pos()
	children := []*ast.Node{p.parseFactor()}
	for p.atSymbol("*") || p.atSymbol("/") {
		opTok := p.advance()
		children = append(children, ast.New(ast.OperatorTok, opTok.Text, opTok.Pos), p.parseFactor())
	}
	return ast.New(ast.Term, "", pos, children...)
}

func (p *parser) parseFactor() *ast.Node {
	pos := p.pos()
	var sign *ast.Node
	if p.atSymbol("-") || p.atSymbol("+") {
		signTok := p.advance()
		sign = ast.New(ast.SignTok, signTok.Text, signTok.Pos)
	}

	var inner *ast.Node
	if p.atSymbol("(") {
		p.advance()
		inner = p.parseExpression()
		p.expectSymbol(")")
	} else {
		inner = p.parseValue()
	}

	children := []*ast.Node{inner}
	if sign != nil {
		children = append(children, sign)
	}
	return ast.New(ast.Factor, "", pos, children...)
}

func (p *parser) parseValue() *ast.Node {
	pos := p.pos()
	cur := p.cur()
	switch cur.Kind {
	case lexer.Int:
		p.advance()
		return ast.New(ast.Value, "", pos, ast.New(ast.CteInt, cur.Text, cur.Pos))
	case lexer.Float:
		p.advance()
		return ast.New(ast.Value, "", pos, ast.New(ast.CteFloat, cur.Text, cur.Pos))
	case lexer.Ident:
		p.advance()
		return ast.New(ast.Value, "", pos, ast.New(ast.ID, cur.Text, cur.Pos))
	default:
		p.fail(cur.Pos, "expected a value, got %q", cur.Text)
		return nil
	}
}
