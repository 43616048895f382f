// Package quad implements the quadruple vector and the emitter that
// appends to it: PC tracking, the jump stack, and backpatch primitives.
//
// Grounded on original_source/src/classes/quadruple_unit.rs (the
// (name, address) pair making up each slot) and
// original_source/src/structs/dusty_context.rs's generate_*_quad /
// fill_jump / fill_while_* methods (the backpatch primitives), adapted to
// an owned Emitter sub-structure per spec §9's re-architecture note.
package quad

import (
	"fmt"

	"github.com/jcorbin/gothird/internal/types"
)

// Operand is one (display-name, address) slot of a quadruple. The display
// name is a debug aid only; execution reads Addr.
type Operand struct {
	Name string
	Addr int
}

// Unused is the canonical empty slot: display name "_", address 0.
var Unused = Operand{Name: "_"}

// Quad is one four-address instruction.
type Quad struct {
	Op   types.Operator
	Arg1 Operand
	Arg2 Operand
	Dest Operand
}

// StackUnderflowError indicates a missing operand or operator: a translator
// bug, or a malformed parse tree. Always fatal.
type StackUnderflowError struct{ What string }

func (e StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow: missing %s", e.What)
}

// Emitter owns the growing quadruple vector, the 1-based PC, the jump
// stack of pending backpatch sites, and the global temporary-naming
// counter (display names like "t3" count up across the whole program, per
// original_source's QuadData.temp_counter; actual storage addresses are
// allocated per-function by internal/symtab).
type Emitter struct {
	Quads     []Quad
	jumpStack []int
	tempSeq   int
}

// PC returns the 1-based index the next Emit call will occupy.
func (e *Emitter) PC() int { return len(e.Quads) + 1 }

// Emit appends a new quadruple and returns its 1-based PC.
func (e *Emitter) Emit(op types.Operator, arg1, arg2, dest Operand) int {
	e.Quads = append(e.Quads, Quad{op, arg1, arg2, dest})
	return len(e.Quads)
}

// PushJump pushes the PC of the most recently emitted quadruple (which must
// have an incomplete Dest) onto the jump stack.
func (e *Emitter) PushJump() {
	e.jumpStack = append(e.jumpStack, len(e.Quads))
}

// PushJumpAt pushes an explicit PC onto the jump stack (used for the
// while-loop's start-of-condition marker, which names a PC rather than an
// incomplete quad).
func (e *Emitter) PushJumpAt(pc int) {
	e.jumpStack = append(e.jumpStack, pc)
}

// PopJump pops and returns the top of the jump stack.
func (e *Emitter) PopJump() (int, error) {
	if len(e.jumpStack) == 0 {
		return 0, StackUnderflowError{"jump target"}
	}
	pc := e.jumpStack[len(e.jumpStack)-1]
	e.jumpStack = e.jumpStack[:len(e.jumpStack)-1]
	return pc, nil
}

// JumpStackEmpty reports whether the jump stack is empty, checked at the
// end of translation per spec invariant #2.
func (e *Emitter) JumpStackEmpty() bool { return len(e.jumpStack) == 0 }

// Backpatch pops the jump stack and fills that quadruple's Dest with
// targetPC, in both its address and (for readability) its display name.
func (e *Emitter) Backpatch(targetPC int) error {
	pc, err := e.PopJump()
	if err != nil {
		return err
	}
	e.Quads[pc-1].Dest = Operand{Name: fmt.Sprintf("%d", targetPC), Addr: targetPC}
	return nil
}

// BackpatchAt fills quads[pc-1]'s Dest with targetPC without touching the
// jump stack (used for sites the caller has already popped, such as the
// while-loop's gotof, patched once its closing goto has been emitted).
func (e *Emitter) BackpatchAt(pc, targetPC int) {
	e.Quads[pc-1].Dest = Operand{Name: fmt.Sprintf("%d", targetPC), Addr: targetPC}
}

// Disassemble formats one quadruple as "(op, arg1, arg2, dest)" for
// --dump and --trace output. Unused slots (Unused, or the zero Operand)
// print as "_"; used ones print "name@addr".
func Disassemble(pc int, q Quad) string {
	return fmt.Sprintf("%4d: (%s, %s, %s, %s)", pc, q.Op, formatOperand(q.Arg1), formatOperand(q.Arg2), formatOperand(q.Dest))
}

func formatOperand(o Operand) string {
	if o == Unused || o == (Operand{}) {
		return "_"
	}
	return fmt.Sprintf("%s@%d", o.Name, o.Addr)
}

// NewTempName returns the next "t<n>" display name, advancing the global
// temp-naming sequence. The caller is responsible for allocating the
// backing address via symtab.Table.NewTemp.
func (e *Emitter) NewTempName() string {
	e.tempSeq++
	return fmt.Sprintf("t%d", e.tempSeq)
}
