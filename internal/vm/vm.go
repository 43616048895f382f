// Package vm implements Dusty's segmented-memory stack virtual machine
// (spec §4.8): a global frame, a call stack of per-activation local
// frames, a return-address stack, and a dispatch loop over the
// quadruple vector produced by internal/translate.
//
// The halt-by-panic dispatch and the paged memory segments are grounded
// on the teacher's own internals.go (vm.halt/vm.haltif) and internal/mem
// (Ints/Floats paged storage), generalized from FORTH's single flat cell
// array to Dusty's eleven fixed segments (internal/memmap).
package vm

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jcorbin/gothird/internal/constpool"
	"github.com/jcorbin/gothird/internal/diag"
	"github.com/jcorbin/gothird/internal/flushio"
	"github.com/jcorbin/gothird/internal/mem"
	"github.com/jcorbin/gothird/internal/memmap"
	"github.com/jcorbin/gothird/internal/panicerr"
	"github.com/jcorbin/gothird/internal/quad"
	"github.com/jcorbin/gothird/internal/symtab"
	"github.com/jcorbin/gothird/internal/translate"
	"github.com/jcorbin/gothird/internal/types"
)

// Value is a runtime operand: exactly one of Int, Float, or Str is live,
// selected by Type.
type Value struct {
	Type  types.Type
	Int   int
	Float float64
	Str   string
}

// AsFloat widens an Int value to float64; Float values pass through.
func (v Value) AsFloat() float64 {
	if v.Type == types.Int {
		return float64(v.Int)
	}
	return v.Float
}

func (v Value) String() string {
	switch v.Type {
	case types.Int:
		return strconv.Itoa(v.Int)
	case types.Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case types.String:
		return v.Str
	default:
		return ""
	}
}

// Frame is one activation's local storage: the four Local-* segments,
// reused at the same absolute address range by whichever call is
// currently active.
type Frame struct {
	Ints       mem.Ints
	Floats     mem.Floats
	TempInts   mem.Ints
	TempFloats mem.Floats
}

// HaltError wraps any error that stopped execution, whether a runtime
// diagnostic (spec §7) or an I/O failure while printing.
type HaltError struct{ Err error }

func (e HaltError) Error() string { return fmt.Sprintf("vm halted: %v", e.Err) }
func (e HaltError) Unwrap() error { return e.Err }

// VM holds all runtime state for one program execution.
type VM struct {
	quads []quad.Quad

	global      Frame
	frames      []*Frame
	returnStack []int
	pc          int // 0-based index into quads

	constInts   mem.Ints
	constFloats mem.Floats
	constStrs   mem.Strings

	layouts map[int]*symtab.Func // entry PC -> function; built by New, not read while running

	out      flushio.WriteFlusher
	memLimit uint
	trace    func(pc int, q quad.Quad)
}

// New builds a VM ready to run prog, materializing every interned
// constant into its segment before returning.
func New(prog *translate.Program, opts ...Option) (*VM, error) {
	vm := &VM{
		quads: prog.Quads,
		out:   flushio.NewWriteFlusher(os.Stdout),
	}
	for _, o := range opts {
		o.apply(vm)
	}

	if vm.memLimit != 0 {
		for _, core := range vm.pagedCores() {
			core.Limit = vm.memLimit
		}
	}

	vm.layouts = make(map[int]*symtab.Func)
	for name, f := range prog.Symtab.All() {
		if name != symtab.GlobalScope {
			vm.layouts[f.EntryPC] = f
		}
	}

	if err := vm.materializeConsts(prog.Consts); err != nil {
		return nil, err
	}

	return vm, nil
}

func (vm *VM) pagedCores() []*mem.PagedCore {
	return []*mem.PagedCore{
		&vm.global.Ints.PagedCore, &vm.global.Floats.PagedCore,
		&vm.global.TempInts.PagedCore, &vm.global.TempFloats.PagedCore,
		&vm.constInts.PagedCore, &vm.constFloats.PagedCore, &vm.constStrs.PagedCore,
	}
}

func (vm *VM) materializeConsts(pool *constpool.Pool) error {
	for _, c := range pool.All() {
		_, off, err := memmap.Classify(c.Addr)
		if err != nil {
			return err
		}
		switch c.Type {
		case types.Int:
			n, perr := strconv.ParseInt(c.Text, 10, 64)
			if perr != nil {
				return diag.MalformedLiteral{Text: c.Text, Type: c.Type}
			}
			if err := vm.constInts.Stor(uint(off), int(n)); err != nil {
				return err
			}
		case types.Float:
			f, perr := strconv.ParseFloat(c.Text, 64)
			if perr != nil {
				return diag.MalformedLiteral{Text: c.Text, Type: c.Type}
			}
			if err := vm.constFloats.Stor(uint(off), f); err != nil {
				return err
			}
		case types.String:
			if err := vm.constStrs.Stor(uint(off), c.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes the quadruple vector from its first instruction until an
// end quadruple returns control, or a runtime diagnostic halts it.
func (vm *VM) Run() error {
	err := panicerr.Recover("VM", vm.run)

	if vm.out != nil {
		if ferr := vm.out.Flush(); err == nil {
			err = ferr
		}
	}

	if err == nil {
		return nil
	}
	var he HaltError
	if errors.As(err, &he) {
		return he
	}
	return err
}

func (vm *VM) run() error {
	for {
		if vm.pc < 0 || vm.pc >= len(vm.quads) {
			vm.halt(diag.AddressOutOfRange{Addr: vm.pc + 1})
		}
		q := vm.quads[vm.pc]
		if vm.trace != nil {
			vm.trace(vm.pc+1, q)
		}

		switch q.Op {
		case types.Add, types.Sub, types.Mul, types.Div, types.Lt, types.Gt, types.Eq, types.Ne:
			vm.execArith(q)
			vm.pc++
		case types.Assign:
			vm.storeValue(q.Dest, vm.loadValue(q.Arg1))
			vm.pc++
		case types.Goto:
			vm.pc = q.Dest.Addr - 1
		case types.GotoF:
			if vm.loadValue(q.Arg1).Int == 0 {
				vm.pc = q.Dest.Addr - 1
			} else {
				vm.pc++
			}
		case types.Era:
			frame := &Frame{}
			if vm.memLimit != 0 {
				frame.Ints.Limit = vm.memLimit
				frame.Floats.Limit = vm.memLimit
				frame.TempInts.Limit = vm.memLimit
				frame.TempFloats.Limit = vm.memLimit
			}
			vm.frames = append(vm.frames, frame)
			vm.pc++
		case types.Param:
			vm.storeValue(q.Dest, vm.loadValue(q.Arg1))
			vm.pc++
		case types.Gosub:
			vm.returnStack = append(vm.returnStack, vm.pc+1)
			vm.pc = q.Dest.Addr - 1
		case types.Print:
			vm.execPrint(q)
			vm.pc++
		case types.Endfunc:
			if len(vm.returnStack) == 0 || len(vm.frames) == 0 {
				vm.halt(diag.AddressOutOfRange{Addr: vm.pc + 1})
			}
			ret := vm.returnStack[len(vm.returnStack)-1]
			vm.returnStack = vm.returnStack[:len(vm.returnStack)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.pc = ret
		case types.End:
			return nil
		default:
			vm.halt(diag.AddressOutOfRange{Addr: vm.pc + 1})
		}
	}
}

func (vm *VM) halt(err error) { panic(HaltError{Err: err}) }

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}

func (vm *VM) currentFrame() *Frame {
	if len(vm.frames) == 0 {
		vm.halt(memmap.AddressOutOfRangeError{Addr: 0})
	}
	return vm.frames[len(vm.frames)-1]
}

func (vm *VM) loadValue(op quad.Operand) Value {
	seg, off, err := memmap.Classify(op.Addr)
	vm.haltif(err)
	o := uint(off)

	switch seg {
	case memmap.GInt:
		i, err := vm.global.Ints.Load(o)
		vm.haltif(err)
		return Value{Type: types.Int, Int: i}
	case memmap.GFloat:
		f, err := vm.global.Floats.Load(o)
		vm.haltif(err)
		return Value{Type: types.Float, Float: f}
	case memmap.GTInt:
		i, err := vm.global.TempInts.Load(o)
		vm.haltif(err)
		return Value{Type: types.Int, Int: i}
	case memmap.GTFloat:
		f, err := vm.global.TempFloats.Load(o)
		vm.haltif(err)
		return Value{Type: types.Float, Float: f}
	case memmap.LInt:
		i, err := vm.currentFrame().Ints.Load(o)
		vm.haltif(err)
		return Value{Type: types.Int, Int: i}
	case memmap.LFloat:
		f, err := vm.currentFrame().Floats.Load(o)
		vm.haltif(err)
		return Value{Type: types.Float, Float: f}
	case memmap.LTInt:
		i, err := vm.currentFrame().TempInts.Load(o)
		vm.haltif(err)
		return Value{Type: types.Int, Int: i}
	case memmap.LTFloat:
		f, err := vm.currentFrame().TempFloats.Load(o)
		vm.haltif(err)
		return Value{Type: types.Float, Float: f}
	case memmap.KInt:
		i, err := vm.constInts.Load(o)
		vm.haltif(err)
		return Value{Type: types.Int, Int: i}
	case memmap.KFloat:
		f, err := vm.constFloats.Load(o)
		vm.haltif(err)
		return Value{Type: types.Float, Float: f}
	case memmap.KStr:
		s, err := vm.constStrs.Load(o)
		vm.haltif(err)
		return Value{Type: types.String, Str: s}
	default:
		vm.halt(memmap.AddressOutOfRangeError{Addr: op.Addr})
		return Value{}
	}
}

func (vm *VM) storeValue(op quad.Operand, v Value) {
	seg, off, err := memmap.Classify(op.Addr)
	vm.haltif(err)
	o := uint(off)

	switch seg {
	case memmap.GInt:
		vm.haltif(vm.global.Ints.Stor(o, v.Int))
	case memmap.GFloat:
		vm.haltif(vm.global.Floats.Stor(o, v.AsFloat()))
	case memmap.GTInt:
		vm.haltif(vm.global.TempInts.Stor(o, v.Int))
	case memmap.GTFloat:
		vm.haltif(vm.global.TempFloats.Stor(o, v.AsFloat()))
	case memmap.LInt:
		vm.haltif(vm.currentFrame().Ints.Stor(o, v.Int))
	case memmap.LFloat:
		vm.haltif(vm.currentFrame().Floats.Stor(o, v.AsFloat()))
	case memmap.LTInt:
		vm.haltif(vm.currentFrame().TempInts.Stor(o, v.Int))
	case memmap.LTFloat:
		vm.haltif(vm.currentFrame().TempFloats.Stor(o, v.AsFloat()))
	case memmap.KInt, memmap.KFloat, memmap.KStr:
		vm.halt(diag.WriteToConstant{Addr: op.Addr})
	default:
		vm.halt(memmap.AddressOutOfRangeError{Addr: op.Addr})
	}
}

func (vm *VM) execArith(q quad.Quad) {
	left := vm.loadValue(q.Arg1)
	right := vm.loadValue(q.Arg2)

	var result Value
	switch q.Op {
	case types.Add:
		result = combine(left, right, func(a, b int) int { return a + b }, func(a, b float64) float64 { return a + b })
	case types.Sub:
		result = combine(left, right, func(a, b int) int { return a - b }, func(a, b float64) float64 { return a - b })
	case types.Mul:
		result = combine(left, right, func(a, b int) int { return a * b }, func(a, b float64) float64 { return a * b })
	case types.Div:
		rv := right.AsFloat()
		if rv == 0 {
			vm.halt(diag.DivideByZero{})
		}
		result = Value{Type: types.Float, Float: left.AsFloat() / rv}
	case types.Lt, types.Gt, types.Eq, types.Ne:
		result = relational(q.Op, left, right)
	}

	vm.storeValue(q.Dest, result)
}

func combine(left, right Value, intOp func(a, b int) int, floatOp func(a, b float64) float64) Value {
	if left.Type == types.Int && right.Type == types.Int {
		return Value{Type: types.Int, Int: intOp(left.Int, right.Int)}
	}
	return Value{Type: types.Float, Float: floatOp(left.AsFloat(), right.AsFloat())}
}

func relational(op types.Operator, left, right Value) Value {
	var cmp int
	if left.Type == types.Int && right.Type == types.Int {
		cmp = compareInts(left.Int, right.Int)
	} else {
		cmp = compareFloats(left.AsFloat(), right.AsFloat())
	}

	var ok bool
	switch op {
	case types.Lt:
		ok = cmp < 0
	case types.Gt:
		ok = cmp > 0
	case types.Eq:
		ok = cmp == 0
	case types.Ne:
		ok = cmp != 0
	}
	if ok {
		return Value{Type: types.Int, Int: 1}
	}
	return Value{Type: types.Int, Int: 0}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (vm *VM) execPrint(q quad.Quad) {
	v := vm.loadValue(q.Dest)
	if _, err := fmt.Fprintln(vm.out, v.String()); err != nil {
		vm.halt(err)
	}
}
