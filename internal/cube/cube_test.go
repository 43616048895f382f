package cube_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gothird/internal/cube"
	"github.com/jcorbin/gothird/internal/types"
)

func TestResultTypeArithmetic(t *testing.T) {
	for _, tc := range []struct {
		left, right types.Type
		op          types.Operator
		want        types.Type
	}{
		{types.Int, types.Int, types.Add, types.Int},
		{types.Int, types.Int, types.Sub, types.Int},
		{types.Int, types.Int, types.Mul, types.Int},
		{types.Int, types.Int, types.Div, types.Float}, // int/int still promotes
		{types.Int, types.Float, types.Add, types.Float},
		{types.Float, types.Int, types.Add, types.Float},
		{types.Float, types.Float, types.Div, types.Float},
	} {
		got, err := cube.ResultType(tc.left, tc.right, tc.op)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestResultTypeAssign(t *testing.T) {
	// float := int widens
	got, err := cube.ResultType(types.Float, types.Int, types.Assign)
	require.NoError(t, err)
	assert.Equal(t, types.Float, got)

	// int := float is a compile error
	_, err = cube.ResultType(types.Int, types.Float, types.Assign)
	require.Error(t, err)
	assert.IsType(t, cube.ErrIncompatible{}, err)
}

func TestResultTypeIncompatible(t *testing.T) {
	_, err := cube.ResultType(types.String, types.Int, types.Add)
	require.Error(t, err)
	assert.IsType(t, cube.ErrIncompatible{}, err)

	// mixed int/float relational is not defined
	_, err = cube.ResultType(types.Int, types.Float, types.Lt)
	require.Error(t, err)
}

func TestResultTypeRelational(t *testing.T) {
	got, err := cube.ResultType(types.Int, types.Int, types.Lt)
	require.NoError(t, err)
	assert.Equal(t, types.Int, got)

	got, err = cube.ResultType(types.Float, types.Float, types.Eq)
	require.NoError(t, err)
	assert.Equal(t, types.Int, got)
}
