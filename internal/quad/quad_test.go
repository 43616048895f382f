package quad_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gothird/internal/quad"
	"github.com/jcorbin/gothird/internal/types"
)

func TestEmitAdvancesPC(t *testing.T) {
	var e quad.Emitter
	assert.Equal(t, 1, e.PC())

	pc := e.Emit(types.Add, quad.Operand{Name: "a", Addr: 1000}, quad.Operand{Name: "b", Addr: 1001}, quad.Operand{Name: "t1", Addr: 5000})
	assert.Equal(t, 1, pc)
	assert.Equal(t, 2, e.PC())
}

func TestBackpatch(t *testing.T) {
	var e quad.Emitter

	e.Emit(types.GotoF, quad.Operand{Name: "c", Addr: 1000}, quad.Unused, quad.Unused)
	e.PushJump()

	e.Emit(types.Print, quad.Unused, quad.Unused, quad.Operand{Name: "x", Addr: 1000})

	require.NoError(t, e.Backpatch(e.PC()))
	assert.Equal(t, e.PC(), e.Quads[0].Dest.Addr)
}

func TestBackpatchUnderflow(t *testing.T) {
	var e quad.Emitter
	err := e.Backpatch(1)
	require.Error(t, err)
	assert.IsType(t, quad.StackUnderflowError{}, err)
}

func TestJumpStackEmpty(t *testing.T) {
	var e quad.Emitter
	assert.True(t, e.JumpStackEmpty())
	e.PushJumpAt(1)
	assert.False(t, e.JumpStackEmpty())
	_, err := e.PopJump()
	require.NoError(t, err)
	assert.True(t, e.JumpStackEmpty())
}

func TestNewTempNameIsSequential(t *testing.T) {
	var e quad.Emitter
	assert.Equal(t, "t1", e.NewTempName())
	assert.Equal(t, "t2", e.NewTempName())
}

func TestDisassemble(t *testing.T) {
	q := quad.Quad{
		Op:   types.Add,
		Arg1: quad.Operand{Name: "a", Addr: 1000},
		Arg2: quad.Operand{Name: "b", Addr: 1001},
		Dest: quad.Operand{Name: "t1", Addr: 5000},
	}
	line := quad.Disassemble(3, q)
	assert.Contains(t, line, "a@1000")
	assert.Contains(t, line, "b@1001")
	assert.Contains(t, line, "t1@5000")
}

func TestDisassembleUnusedOperand(t *testing.T) {
	q := quad.Quad{Op: types.End}
	line := quad.Disassemble(1, q)
	assert.Contains(t, line, "_")
}
