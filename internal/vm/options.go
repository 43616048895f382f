package vm

import (
	"io"

	"github.com/jcorbin/gothird/internal/flushio"
	"github.com/jcorbin/gothird/internal/quad"
)

// Option configures a VM at construction time, adapted from the
// teacher's own VMOption/options combinator (api.go, options.go) down to
// the handful of knobs Dusty's non-interactive compile-and-run model
// actually needs: no input queue, since Dusty has no runtime read.
type Option interface{ apply(vm *VM) }

type optionFunc func(vm *VM)

func (f optionFunc) apply(vm *VM) { f(vm) }

// WithOutput sets the writer print quadruples write to. Defaults to
// os.Stdout. The writer is wrapped in a flushio.WriteFlusher so a
// buffered destination still gets flushed when Run returns.
func WithOutput(w io.Writer) Option {
	return optionFunc(func(vm *VM) { vm.out = flushio.NewWriteFlusher(w) })
}

// WithMemLimit caps every paged segment's address space; a store or load
// past the limit halts the VM with a mem.LimitError.
func WithMemLimit(limit uint) Option {
	return optionFunc(func(vm *VM) { vm.memLimit = limit })
}

// WithTrace installs a callback invoked with the 1-based PC and the
// quadruple about to execute, before it runs. Used by the CLI's --trace
// flag.
func WithTrace(fn func(pc int, q quad.Quad)) Option {
	return optionFunc(func(vm *VM) { vm.trace = fn })
}
