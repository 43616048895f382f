// Package cube implements the Dusty semantic cube: the static
// (leftType, rightType, operator) -> resultType table that both the
// expression translator and the assignment reduction consult.
//
// Grounded on original_source/src/structs/semantic_cube.rs, retyped from
// stringly-typed lookups to the closed internal/types variants per the
// spec's redesign notes.
package cube

import (
	"fmt"

	"github.com/jcorbin/gothird/internal/types"
)

// ErrIncompatible is returned (wrapped) when an operator has no defined
// result for the given operand types.
type ErrIncompatible struct {
	Left, Right types.Type
	Op          types.Operator
}

func (e ErrIncompatible) Error() string {
	return fmt.Sprintf("type mismatch: cannot use %v with %v and %v", e.Op, e.Left, e.Right)
}

// table[left][right][op] holds the result type, or Void for "error".
// Only Int and Float participate; String operands are always an error here
// (strings may only ever be pushed directly into a print quad, never
// through an operator reduction).
var table = buildTable()

func idx(t types.Type) int {
	switch t {
	case types.Int:
		return 0
	case types.Float:
		return 1
	default:
		return -1
	}
}

func buildTable() [2][2][10]types.Type {
	var t [2][2][10]types.Type

	// int, int
	t[0][0][types.Add] = types.Int
	t[0][0][types.Sub] = types.Int
	t[0][0][types.Mul] = types.Int
	t[0][0][types.Div] = types.Float // except / -> float
	t[0][0][types.Lt] = types.Int
	t[0][0][types.Gt] = types.Int
	t[0][0][types.Eq] = types.Int
	t[0][0][types.Ne] = types.Int
	t[0][0][types.Assign] = types.Int

	// int, float
	t[0][1][types.Add] = types.Float
	t[0][1][types.Sub] = types.Float
	t[0][1][types.Mul] = types.Float
	t[0][1][types.Div] = types.Float
	// relational and assign mixed int/float: error (left Void)
	t[0][1][types.Assign] = types.Void // int := float is a compile error

	// float, int
	t[1][0][types.Add] = types.Float
	t[1][0][types.Sub] = types.Float
	t[1][0][types.Mul] = types.Float
	t[1][0][types.Div] = types.Float
	t[1][0][types.Assign] = types.Float // float := int widens

	// float, float
	t[1][1][types.Add] = types.Float
	t[1][1][types.Sub] = types.Float
	t[1][1][types.Mul] = types.Float
	t[1][1][types.Div] = types.Float
	t[1][1][types.Lt] = types.Int
	t[1][1][types.Gt] = types.Int
	t[1][1][types.Eq] = types.Int
	t[1][1][types.Ne] = types.Int
	t[1][1][types.Assign] = types.Float

	return t
}

// ResultType returns the result type of applying op to a left-hand operand
// of type left and a right-hand operand of type right. Any combination not
// populated above (including every String entry, the mixed-type relational
// combinations, and int := float) returns ErrIncompatible.
func ResultType(left, right types.Type, op types.Operator) (types.Type, error) {
	li, ri := idx(left), idx(right)
	if li < 0 || ri < 0 {
		return types.Void, ErrIncompatible{left, right, op}
	}
	result := table[li][ri][op]
	if result == types.Void {
		return types.Void, ErrIncompatible{left, right, op}
	}
	return result, nil
}
