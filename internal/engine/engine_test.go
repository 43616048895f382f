package engine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gothird/internal/engine"
	"github.com/jcorbin/gothird/internal/quad"
)

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	result, err := engine.Run(strings.NewReader(`program p;
vars
  x: int;
begin
  x = 2 + 3;
  print(x);
end;`), "test", engine.Options{Output: &out})

	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Program)
	assert.Equal(t, "5\n", out.String())
}

func TestRunParseError(t *testing.T) {
	_, err := engine.Run(strings.NewReader(`program p
begin
end;`), "test", engine.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestRunCompileError(t *testing.T) {
	_, err := engine.Run(strings.NewReader(`program p;
begin
  x = 1;
end;`), "test", engine.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile error")
}

func TestRunRuntimeError(t *testing.T) {
	_, err := engine.Run(strings.NewReader(`program p;
vars
  x: float;
begin
  x = 1 / 0;
end;`), "test", engine.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime error")
}

func TestRunWithTrace(t *testing.T) {
	var out bytes.Buffer
	var traced []string
	_, err := engine.Run(strings.NewReader(`program p;
vars
  x: int;
begin
  x = 1;
  print(x);
end;`), "test", engine.Options{
		Output: &out,
		Trace: func(pc int, q quad.Quad) {
			traced = append(traced, quad.Disassemble(pc, q))
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, traced)
}

func TestRunMemLimitHalts(t *testing.T) {
	// the constants 1, 2, 3 land at offsets 0, 1, 2 within the KInt segment;
	// a limit of 1 permits only offset 0, so materializing the second
	// constant already fails in vm.New, before any quadruple runs.
	_, err := engine.Run(strings.NewReader(`program p;
vars
  x: int;
  y: int;
  z: int;
begin
  x = 1;
  y = 2;
  z = 3;
end;`), "test", engine.Options{MemLimit: 1})
	require.Error(t, err)
}
