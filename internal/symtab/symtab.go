// Package symtab implements Dusty's per-function variable directories: a
// flat "global" scope plus one scope per declared function, each owning its
// own resource counters that drive local address allocation.
//
// Grounded on original_source/src/structs/function_info.rs and
// var_info.rs, generalized from string-keyed lookups to internal/types and
// internal/memmap.
package symtab

import (
	"fmt"

	"github.com/jcorbin/gothird/internal/memmap"
	"github.com/jcorbin/gothird/internal/types"
)

// GlobalScope is the reserved name of the global function record.
const GlobalScope = "global"

// Var is one declared variable: identifier, type, and absolute address.
// Immutable after declaration.
type Var struct {
	Name string
	Type types.Type
	Addr int
}

// resources tracks the four address counters a function's locals draw from.
type resources struct {
	ints, floats, tempInts, tempFloats int
}

func (r *resources) counter(t types.Type, kind types.Kind) *int {
	switch {
	case t == types.Int && kind == types.Regular:
		return &r.ints
	case t == types.Float && kind == types.Regular:
		return &r.floats
	case t == types.Int && kind == types.Temporary:
		return &r.tempInts
	case t == types.Float && kind == types.Temporary:
		return &r.tempFloats
	default:
		panic(fmt.Sprintf("symtab: no counter for %v %v", t, kind))
	}
}

// Func is one function's (or the global scope's) directory: its variables,
// declared parameter types in order, resource counters, and entry PC.
type Func struct {
	Name       string
	EntryPC    int // 0 until the function's body begins; patched once.
	Params     []types.Type
	ParamAddrs []int // parallel to Params: each parameter's local storage address
	vars       map[string]*Var
	res        resources
}

// IsGlobal reports whether f is the reserved global scope.
func (f *Func) IsGlobal() bool { return f.Name == GlobalScope }

// Lookup returns the variable declared in f by name, if any.
func (f *Func) Lookup(name string) (*Var, bool) {
	v, ok := f.vars[name]
	return v, ok
}

// Counts returns the four resource counters. The VM does not consult them:
// its frames grow lazily as addresses are stored.
func (f *Func) Counts() (ints, floats, tempInts, tempFloats int) {
	return f.res.ints, f.res.floats, f.res.tempInts, f.res.tempFloats
}

// Table is the complete symbol table: the global scope plus one scope per
// declared function. Scopes are flat; functions do not nest.
type Table struct {
	funcs map[string]*Func
}

// New returns a table with only the global scope declared.
func New() *Table {
	t := &Table{funcs: make(map[string]*Func)}
	t.funcs[GlobalScope] = &Func{Name: GlobalScope, vars: make(map[string]*Var)}
	return t
}

// RedeclaredIdentifierError is raised by DeclareFunction/DeclareVar when the
// name already exists in the relevant scope.
type RedeclaredIdentifierError struct{ Name string }

func (e RedeclaredIdentifierError) Error() string {
	return fmt.Sprintf("redeclared identifier %q", e.Name)
}

// UndeclaredIdentifierError is raised by Lookup when a free identifier
// resolves in neither the current function nor the global scope.
type UndeclaredIdentifierError struct{ Name string }

func (e UndeclaredIdentifierError) Error() string {
	return fmt.Sprintf("undeclared identifier %q", e.Name)
}

// DeclareFunction creates an empty scope for name. Fails if name is already
// a function or already the global scope.
func (t *Table) DeclareFunction(name string) (*Func, error) {
	if _, exists := t.funcs[name]; exists {
		return nil, RedeclaredIdentifierError{name}
	}
	f := &Func{Name: name, vars: make(map[string]*Var)}
	t.funcs[name] = f
	return f, nil
}

// Function returns the named function's scope.
func (t *Table) Function(name string) (*Func, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// All returns every declared function, including the global scope, keyed
// by name. Used by the VM at startup to build its entry-PC layout index.
func (t *Table) All() map[string]*Func {
	return t.funcs
}

// DeclareVar allocates an address for a new regular variable of type varType
// in the named function's scope (or the global scope), and records it.
// Fails if name already exists in that scope.
func (t *Table) DeclareVar(funcName, name string, varType types.Type) (*Var, error) {
	f := t.funcs[funcName]
	if _, exists := f.vars[name]; exists {
		return nil, RedeclaredIdentifierError{name}
	}

	seg := memmap.SegmentFor(varType, f.IsGlobal(), types.Regular)
	counter := f.res.counter(varType, types.Regular)
	v := &Var{Name: name, Type: varType, Addr: memmap.Base(seg) + *counter}
	*counter++
	f.vars[name] = v
	return v, nil
}

// AddParam appends paramType to f's declared parameter list, in declaration
// order, and declares the matching variable in f's scope under name.
func (t *Table) AddParam(funcName, name string, paramType types.Type) (*Var, error) {
	f := t.funcs[funcName]
	v, err := t.DeclareVar(funcName, name, paramType)
	if err != nil {
		return nil, err
	}
	f.Params = append(f.Params, paramType)
	f.ParamAddrs = append(f.ParamAddrs, v.Addr)
	return v, nil
}

// NewTemp allocates a new temporary variable of type t in the named
// function's scope and returns its address. Naming ("t<n>") is the
// emitter's responsibility, since the display name counter is global across
// the whole translation, not per-function (original_source's
// QuadData.temp_counter).
func (t *Table) NewTemp(funcName string, varType types.Type) int {
	f := t.funcs[funcName]
	seg := memmap.SegmentFor(varType, f.IsGlobal(), types.Temporary)
	counter := f.res.counter(varType, types.Temporary)
	addr := memmap.Base(seg) + *counter
	*counter++
	return addr
}

// Lookup resolves name against funcName's scope first, then the global
// scope, per spec §4.3: a free identifier resolves as global if and only if
// present there.
func (t *Table) Lookup(funcName, name string) (*Var, error) {
	if f, ok := t.funcs[funcName]; ok {
		if v, ok := f.Lookup(name); ok {
			return v, nil
		}
	}
	if g := t.funcs[GlobalScope]; funcName != GlobalScope {
		if v, ok := g.Lookup(name); ok {
			return v, nil
		}
	}
	return nil, UndeclaredIdentifierError{name}
}
