// Package translate implements Dusty's semantic analyzer and quadruple
// generator: the single syntax-directed walk over the parse tree (spec
// §6.1) that produces a linear quadruple vector, consulting the symbol
// tables, the semantic cube, and the constant pool along the way.
//
// The Context here is the "single translator context" the spec's
// re-architecture notes (§9) call for: one owned aggregate whose fields
// (symbol table, constant pool, emitter, and the expression translator's
// two stacks) are independently meaningful sub-structures, walked by a
// plain recursive descent over ast.Node rather than a re-entrant
// (Rule, Stage) state machine. The per-construct logic is grounded on
// original_source/src/structs/dusty_context.rs's generate_*_quad methods.
package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcorbin/gothird/internal/ast"
	"github.com/jcorbin/gothird/internal/constpool"
	"github.com/jcorbin/gothird/internal/cube"
	"github.com/jcorbin/gothird/internal/diag"
	"github.com/jcorbin/gothird/internal/panicerr"
	"github.com/jcorbin/gothird/internal/quad"
	"github.com/jcorbin/gothird/internal/symtab"
	"github.com/jcorbin/gothird/internal/types"
)

// Program is the translator's output: the quadruple vector plus enough of
// the symbol table and constant pool for the VM to size its segments and
// materialize constants.
type Program struct {
	Quads  []quad.Quad
	Symtab *symtab.Table
	Consts *constpool.Pool
}

// operand is an expression-translator stack entry: a resolved variable,
// temporary, or constant, with its type known so the cube can be
// consulted.
type operand struct {
	Name string
	Type types.Type
	Addr int
}

func (o operand) asQuadOperand() quad.Operand { return quad.Operand{Name: o.Name, Addr: o.Addr} }

// Context owns all mutable translation state. Per spec §5, every mutation
// is strictly sequential and follows parse traversal order; nothing here
// is safe for concurrent use, nor does it need to be.
type Context struct {
	symtab *symtab.Table
	consts *constpool.Pool
	emit   *quad.Emitter

	currentFunc string // "global" at top level, else the enclosing function's name

	operandStack  []operand
	operatorStack []types.Operator
}

// New returns an empty translation context.
func New() *Context {
	return &Context{
		symtab: symtab.New(),
		consts: &constpool.Pool{},
		emit:   &quad.Emitter{},
	}
}

// Translate walks a complete "program" node and returns the generated
// Program, or the first compile error encountered.
func Translate(root *ast.Node) (*Program, error) {
	c := New()
	var prog *Program

	err := panicerr.Recover("translate", func() error {
		c.translateProgram(root)

		if !c.emit.JumpStackEmpty() {
			panic(diag.CompileError{Pos: root.Pos, Err: quad.StackUnderflowError{What: "jump target (unbalanced control flow)"}})
		}

		prog = &Program{Quads: c.emit.Quads, Symtab: c.symtab, Consts: c.consts}
		return nil
	})
	if err == nil {
		return prog, nil
	}

	var ce diag.CompileError
	if errors.As(err, &ce) {
		return nil, ce
	}
	return nil, err
}

func fail(pos ast.Pos, err error) {
	panic(diag.CompileError{Pos: pos, Err: err})
}

// --- program structure (spec §4.7 "Program structure") ---

func (c *Context) translateProgram(n *ast.Node) {
	c.currentFunc = symtab.GlobalScope

	leadGoto := c.emit.Emit(types.Goto, quad.Unused, quad.Unused, quad.Unused)
	c.emit.PushJumpAt(leadGoto)

	if vars := n.Find(ast.Vars); vars != nil {
		c.translateVars(vars)
	}
	if funcs := n.Find(ast.Funcs); funcs != nil {
		c.translateFuncs(funcs)
	}

	begin := n.Find(ast.BeginKw)
	if pc, err := c.emit.PopJump(); err == nil {
		c.emit.BackpatchAt(pc, c.emit.PC())
	} else if begin != nil {
		fail(begin.Pos, err)
	}

	c.currentFunc = symtab.GlobalScope
	if body := n.Find(ast.Body); body != nil {
		c.translateBody(body)
	}

	c.emit.Emit(types.End, quad.Unused, quad.Unused, quad.Unused)
}

func (c *Context) translateVars(n *ast.Node) {
	for _, tv := range n.FindAll(ast.TypeVar) {
		c.declareTypeVar(tv, c.currentFunc)
	}
}

func (c *Context) declareTypeVar(tv *ast.Node, funcName string) {
	t := parseType(tv.Text)
	idList := tv.Find(ast.IDList)
	for _, idNode := range idList.FindAll(ast.ID) {
		if _, err := c.symtab.DeclareVar(funcName, idNode.Text, t); err != nil {
			fail(idNode.Pos, err)
		}
	}
}

// A function declaration has no dedicated label of its own: it is simply
// an "id" node (the function name) whose children are its Parameters and
// FuncBody, mirroring Dusty's grammar where "func" is not itself a
// production distinct from the name that introduces it.
func (c *Context) translateFuncs(n *ast.Node) {
	for _, fn := range n.Children {
		c.translateFunc(fn)
	}
}

func (c *Context) translateFunc(fn *ast.Node) {
	name := fn.Text
	if _, err := c.symtab.DeclareFunction(name); err != nil {
		fail(fn.Pos, err)
	}

	if params := fn.Find(ast.Parameters); params != nil {
		if idt := params.Find(ast.IDTypeList); idt != nil {
			c.declareParams(idt, name)
		}
	}

	f, _ := c.symtab.Function(name)
	f.EntryPC = c.emit.PC()

	c.currentFunc = name
	if body := fn.Find(ast.FuncBody); body != nil {
		if b := body.Find(ast.Body); b != nil {
			c.translateBody(b)
		}
	}
	c.currentFunc = symtab.GlobalScope

	c.emit.Emit(types.Endfunc, quad.Unused, quad.Unused, quad.Unused)
}

// Each parameter is itself an "id" node (the parameter name) with a single
// TypeVar child carrying its declared type text, the same carrier node
// vars declarations use for "name : type".
func (c *Context) declareParams(idt *ast.Node, funcName string) {
	for _, param := range idt.Children {
		typeNode := param.Find(ast.TypeVar)
		var t types.Type
		if typeNode != nil {
			t = parseType(typeNode.Text)
		}
		if _, err := c.symtab.AddParam(funcName, param.Text, t); err != nil {
			fail(param.Pos, err)
		}
	}
}

func (c *Context) translateBody(n *ast.Node) {
	for _, stmt := range n.FindAll(ast.Statement) {
		c.translateStatement(stmt)
	}
}

// --- statements (spec §4.7) ---

func (c *Context) translateStatement(stmt *ast.Node) {
	if len(stmt.Children) == 0 {
		return
	}
	inner := stmt.Children[0]
	switch inner.Label {
	case ast.Assign:
		c.translateAssign(inner)
	case ast.Condition:
		c.translateCondition(inner)
	case ast.WhileLoop:
		c.translateWhile(inner)
	case ast.Print:
		c.translatePrint(inner)
	case ast.FuncCall:
		c.translateCall(inner)
	default:
		fail(inner.Pos, quad.StackUnderflowError{What: fmt.Sprintf("unknown statement kind %q", inner.Label)})
	}
}

func (c *Context) translateAssign(n *ast.Node) {
	idNode := n.Find(ast.ID)
	v, err := c.symtab.Lookup(c.currentFunc, idNode.Text)
	if err != nil {
		fail(idNode.Pos, err)
	}
	c.pushOperand(operand{Name: v.Name, Type: v.Type, Addr: v.Addr})
	c.pushOperator(types.Assign)

	expr := n.Find(ast.Expression)
	c.translateExpression(expr)

	c.reduceAssign(n.Pos)
}

func (c *Context) translateCondition(n *ast.Node) {
	expr := n.Find(ast.Expression)
	c.translateExpression(expr)

	cond := c.popOperand(n.Pos)
	if cond.Type != types.Int {
		fail(n.Pos, diag.BadConditionType{Got: cond.Type})
	}

	gotofPC := c.emit.Emit(types.GotoF, cond.asQuadOperand(), quad.Unused, quad.Unused)
	c.emit.PushJumpAt(gotofPC)

	bodies := n.FindAll(ast.Body)
	if len(bodies) > 0 {
		c.translateBody(bodies[0])
	}

	elseKw := n.Find(ast.ElseKw)
	if elseKw != nil {
		gotofJump, err := c.emit.PopJump()
		if err != nil {
			fail(n.Pos, err)
		}
		c.emit.BackpatchAt(gotofJump, c.emit.PC()+1)

		gotoPC := c.emit.Emit(types.Goto, quad.Unused, quad.Unused, quad.Unused)
		c.emit.PushJumpAt(gotoPC)

		if len(bodies) > 1 {
			c.translateBody(bodies[1])
		}
	}

	if err := c.emit.Backpatch(c.emit.PC()); err != nil {
		fail(n.Pos, err)
	}
}

func (c *Context) translateWhile(n *ast.Node) {
	loopStart := c.emit.PC()
	c.emit.PushJumpAt(loopStart)

	expr := n.Find(ast.Expression)
	c.translateExpression(expr)

	cond := c.popOperand(n.Pos)
	if cond.Type != types.Int {
		fail(n.Pos, diag.BadConditionType{Got: cond.Type})
	}

	gotofPC := c.emit.Emit(types.GotoF, cond.asQuadOperand(), quad.Unused, quad.Unused)
	c.emit.PushJumpAt(gotofPC)

	if body := n.Find(ast.Body); body != nil {
		c.translateBody(body)
	}

	gotofJump, err := c.emit.PopJump()
	if err != nil {
		fail(n.Pos, err)
	}
	loopStartPC, err := c.emit.PopJump()
	if err != nil {
		fail(n.Pos, err)
	}

	c.emit.Emit(types.Goto, quad.Unused, quad.Unused, quad.Operand{
		Name: fmt.Sprintf("%d", loopStartPC), Addr: loopStartPC,
	})
	c.emit.BackpatchAt(gotofJump, c.emit.PC())
}

func (c *Context) translatePrint(n *ast.Node) {
	for _, elem := range n.FindAll(ast.PrintElem) {
		c.translatePrintElement(elem)
	}
}

func (c *Context) translatePrintElement(n *ast.Node) {
	if s := n.Find(ast.StringLit); s != nil {
		con := c.consts.Intern(unquote(s.Text), types.String)
		c.emit.Emit(types.Print, quad.Unused, quad.Unused, quad.Operand{Name: con.Text, Addr: con.Addr})
		return
	}
	expr := n.Find(ast.Expression)
	c.translateExpression(expr)
	val := c.popOperand(n.Pos)
	c.emit.Emit(types.Print, quad.Unused, quad.Unused, val.asQuadOperand())
}

func (c *Context) translateCall(n *ast.Node) {
	idNode := n.Find(ast.ID)
	f, ok := c.symtab.Function(idNode.Text)
	if !ok {
		fail(idNode.Pos, symtab.UndeclaredIdentifierError{Name: idNode.Text})
	}

	c.emit.Emit(types.Era, quad.Unused, quad.Unused, quad.Operand{Name: f.Name, Addr: f.EntryPC})

	args := n.FindAll(ast.Expression)
	for i, arg := range args {
		c.translateExpression(arg)
		val := c.popOperand(arg.Pos)
		if i >= len(f.Params) {
			fail(n.Pos, diag.ArityMismatch{Func: f.Name, Want: len(f.Params), Got: len(args)})
		}
		if val.Type != f.Params[i] {
			fail(arg.Pos, diag.TypeMismatch{Left: f.Params[i], Right: val.Type, Op: types.Assign})
		}
		c.emit.Emit(types.Param, val.asQuadOperand(), quad.Unused, quad.Operand{Name: fmt.Sprintf("param%d", i), Addr: f.ParamAddrs[i]})
	}
	if len(args) != len(f.Params) {
		fail(n.Pos, diag.ArityMismatch{Func: f.Name, Want: len(f.Params), Got: len(args)})
	}

	c.emit.Emit(types.Gosub, quad.Unused, quad.Unused, quad.Operand{Name: f.Name, Addr: f.EntryPC})
}

// --- expressions (spec §4.6) ---

var addSub = []types.Operator{types.Add, types.Sub}
var mulDiv = []types.Operator{types.Mul, types.Div}
var relational = []types.Operator{types.Lt, types.Gt, types.Eq, types.Ne}

func (c *Context) translateExpression(n *ast.Node) {
	exps := n.FindAll(ast.Exp)
	if len(exps) == 0 {
		return
	}
	c.translateExp(exps[0])
	if cmp := n.Find(ast.Comparator); cmp != nil && len(exps) > 1 {
		c.reduceIfTop(relational)
		c.pushOperator(parseRelational(cmp.Text))
		c.translateExp(exps[1])
	}
	c.reduceIfTop(relational)
}

func (c *Context) translateExp(n *ast.Node) {
	terms := n.FindAll(ast.Term)
	ops := n.FindAll(ast.OperatorTok)
	if len(terms) == 0 {
		return
	}
	c.translateTerm(terms[0])
	for i := 1; i < len(terms); i++ {
		c.reduceIfTop(addSub)
		var op types.Operator
		if i-1 < len(ops) {
			op = parseAddSub(ops[i-1].Text)
		}
		c.pushOperator(op)
		c.translateTerm(terms[i])
	}
	c.reduceIfTop(addSub)
}

func (c *Context) translateTerm(n *ast.Node) {
	factors := n.FindAll(ast.Factor)
	ops := n.FindAll(ast.OperatorTok)
	if len(factors) == 0 {
		return
	}
	c.translateFactor(factors[0])
	for i := 1; i < len(factors); i++ {
		c.reduceIfTop(mulDiv)
		var op types.Operator
		if i-1 < len(ops) {
			op = parseMulDiv(ops[i-1].Text)
		}
		c.pushOperator(op)
		c.translateFactor(factors[i])
	}
	c.reduceIfTop(mulDiv)
}

func (c *Context) translateFactor(n *ast.Node) {
	if expr := n.Find(ast.Expression); expr != nil {
		// Parenthesised expression: a marker on the operator stack keeps
		// the reductions inside from consuming operators outside.
		c.pushOperator(types.OpNone)
		c.translateExpression(expr)
		c.popOperator(n.Pos)
	} else {
		c.translateValue(n.Find(ast.Value))
	}

	sign := n.Find(ast.SignTok)
	if sign == nil || sign.Text != "-" {
		return
	}
	// Unary minus: rewrite as (0 - value), grounded on the same temp
	// allocation and cube lookup every binary reduction uses.
	v := c.popOperand(n.Pos)
	zeroText := "0"
	if v.Type == types.Float {
		zeroText = "0.0"
	}
	zero := c.consts.Intern(zeroText, v.Type)
	c.pushOperand(operand{Name: zero.Text, Type: v.Type, Addr: zero.Addr})
	c.pushOperand(v)
	c.pushOperator(types.Sub)
	c.emitFull(n.Pos)
}

func (c *Context) translateValue(n *ast.Node) {
	if n == nil {
		return
	}
	switch {
	case n.Find(ast.CteInt) != nil:
		lit := n.Find(ast.CteInt)
		con := c.consts.Intern(lit.Text, types.Int)
		c.pushOperand(operand{Name: con.Text, Type: types.Int, Addr: con.Addr})
	case n.Find(ast.CteFloat) != nil:
		lit := n.Find(ast.CteFloat)
		con := c.consts.Intern(lit.Text, types.Float)
		c.pushOperand(operand{Name: con.Text, Type: types.Float, Addr: con.Addr})
	case n.Find(ast.ID) != nil:
		idNode := n.Find(ast.ID)
		v, err := c.symtab.Lookup(c.currentFunc, idNode.Text)
		if err != nil {
			fail(idNode.Pos, err)
		}
		c.pushOperand(operand{Name: v.Name, Type: v.Type, Addr: v.Addr})
	}
}

// --- stack primitives & reductions ---

func (c *Context) pushOperand(o operand) { c.operandStack = append(c.operandStack, o) }

func (c *Context) popOperand(pos ast.Pos) operand {
	if len(c.operandStack) == 0 {
		fail(pos, diag.StackUnderflow{What: "operand"})
	}
	o := c.operandStack[len(c.operandStack)-1]
	c.operandStack = c.operandStack[:len(c.operandStack)-1]
	return o
}

func (c *Context) pushOperator(op types.Operator) { c.operatorStack = append(c.operatorStack, op) }

func (c *Context) topOperatorIn(set []types.Operator) bool {
	if len(c.operatorStack) == 0 {
		return false
	}
	top := c.operatorStack[len(c.operatorStack)-1]
	for _, op := range set {
		if top == op {
			return true
		}
	}
	return false
}

func (c *Context) popOperator(pos ast.Pos) types.Operator {
	if len(c.operatorStack) == 0 {
		fail(pos, diag.StackUnderflow{What: "operator"})
	}
	op := c.operatorStack[len(c.operatorStack)-1]
	c.operatorStack = c.operatorStack[:len(c.operatorStack)-1]
	return op
}

// reduceIfTop emits a full reduction while the top of the operator stack is
// in set, giving left-to-right associativity within a precedence class.
func (c *Context) reduceIfTop(set []types.Operator) {
	for c.topOperatorIn(set) {
		c.emitFull(ast.Pos{})
	}
}

// emitFull implements spec §4.6's "Reduction": pop right, pop left, pop
// op; consult the cube; allocate a temp of the result type; emit; push the
// temp.
func (c *Context) emitFull(pos ast.Pos) {
	right := c.popOperand(pos)
	left := c.popOperand(pos)
	op := c.popOperator(pos)

	resultType, err := cube.ResultType(left.Type, right.Type, op)
	if err != nil {
		fail(pos, diag.TypeMismatch{Left: left.Type, Right: right.Type, Op: op})
	}

	name := c.emit.NewTempName()
	addr := c.symtab.NewTemp(c.currentFunc, resultType)
	c.emit.Emit(op, left.asQuadOperand(), right.asQuadOperand(), quad.Operand{Name: name, Addr: addr})
	c.pushOperand(operand{Name: name, Type: resultType, Addr: addr})
}

// reduceAssign implements spec §4.6's "Assignment reduction": does not
// push a result.
func (c *Context) reduceAssign(pos ast.Pos) {
	right := c.popOperand(pos)
	left := c.popOperand(pos)
	op := c.popOperator(pos)
	if op != types.Assign {
		fail(pos, diag.StackUnderflow{What: "assignment operator"})
	}

	if _, err := cube.ResultType(left.Type, right.Type, op); err != nil {
		fail(pos, diag.TypeMismatch{Left: left.Type, Right: right.Type, Op: op})
	}

	c.emit.Emit(types.Assign, right.asQuadOperand(), quad.Unused, left.asQuadOperand())
}

// --- lexical helpers ---

func parseType(text string) types.Type {
	switch strings.TrimSpace(text) {
	case "int":
		return types.Int
	case "float":
		return types.Float
	default:
		return types.Void
	}
}

func parseAddSub(text string) types.Operator {
	if text == "-" {
		return types.Sub
	}
	return types.Add
}

func parseMulDiv(text string) types.Operator {
	if text == "/" {
		return types.Div
	}
	return types.Mul
}

func parseRelational(text string) types.Operator {
	switch text {
	case "<":
		return types.Lt
	case ">":
		return types.Gt
	case "==":
		return types.Eq
	case "!=":
		return types.Ne
	default:
		return types.OpNone
	}
}

func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}
