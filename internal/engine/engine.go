// Package engine orchestrates a complete Dusty run: parse, translate,
// execute. It is the shared entry point for both cmd/dusty and the
// package's end-to-end tests, mirroring the teacher's own separation
// between its CLI (main.go) and its reusable Core/VM types (core.go).
package engine

import (
	"fmt"
	"io"

	"github.com/jcorbin/gothird/internal/parser"
	"github.com/jcorbin/gothird/internal/quad"
	"github.com/jcorbin/gothird/internal/translate"
	"github.com/jcorbin/gothird/internal/vm"
)

// Result carries the compiled program alongside its execution outcome,
// for callers (notably --dump) that want the quadruples even when asked
// only to run them.
type Result struct {
	Program *translate.Program
}

// Options configures a single Run call.
type Options struct {
	Output   io.Writer
	MemLimit uint
	Trace    func(pc int, q quad.Quad)
}

// Run compiles src (named filename for diagnostics) and, if compilation
// succeeds, executes it to completion.
func Run(src io.Reader, filename string, opts Options) (*Result, error) {
	root, err := parser.Parse(src, filename)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	prog, err := translate.Translate(root)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	result := &Result{Program: prog}

	var vmOpts []vm.Option
	if opts.Output != nil {
		vmOpts = append(vmOpts, vm.WithOutput(opts.Output))
	}
	if opts.MemLimit != 0 {
		vmOpts = append(vmOpts, vm.WithMemLimit(opts.MemLimit))
	}
	if opts.Trace != nil {
		vmOpts = append(vmOpts, vm.WithTrace(opts.Trace))
	}

	machine, err := vm.New(prog, vmOpts...)
	if err != nil {
		return result, fmt.Errorf("vm init error: %w", err)
	}

	if err := machine.Run(); err != nil {
		return result, fmt.Errorf("runtime error: %w", err)
	}

	return result, nil
}
