// Command dusty compiles and runs a single Dusty source file: semantic
// analysis and quadruple generation, followed immediately by execution
// on the segmented-memory virtual machine. There is no separate "compile
// to a file" step; a source file and a completed run are the whole
// surface.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jcorbin/gothird/internal/engine"
	"github.com/jcorbin/gothird/internal/logio"
	"github.com/jcorbin/gothird/internal/quad"
	"github.com/jcorbin/gothird/internal/tracelog"
	"github.com/jcorbin/gothird/internal/translate"
)

func main() {
	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	var (
		memLimit uint
		trace    bool
		verbose  bool
		dump     bool
	)

	root := &cobra.Command{
		Use:           "dusty <file>",
		Short:         "compile and run a Dusty program",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], &log, trace, verbose, dump, memLimit)
		},
	}

	root.Flags().UintVar(&memLimit, "mem-limit", 0, "cap every memory segment's address space")
	root.Flags().BoolVar(&trace, "trace", false, "log every quadruple immediately before it executes")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose compile-time logging")
	root.Flags().BoolVar(&dump, "dump", false, "print the compiled quadruple vector after the run completes")

	if err := root.Execute(); err != nil {
		log.ErrorIf(err)
	}
}

func runFile(path string, log *logio.Logger, trace, verbose, dump bool, memLimit uint) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if verbose {
		log.Printf("INFO", "compiling %s", path)
	}

	opts := engine.Options{Output: os.Stdout, MemLimit: memLimit}

	var drain *tracelog.Drain
	if trace {
		tracef := log.Leveledf("TRACE")
		drain = tracelog.Start(tracef)
		opts.Trace = drain.Trace
	}

	result, runErr := engine.Run(f, path, opts)

	if drain != nil {
		if closeErr := drain.Close(); closeErr != nil && runErr == nil {
			runErr = closeErr
		}
	}

	if dump && result != nil && result.Program != nil {
		dumpProgram(result.Program)
	}

	return runErr
}

func dumpProgram(prog *translate.Program) {
	fmt.Fprintln(os.Stderr, color.YellowString("-- quadruples --"))
	for i, q := range prog.Quads {
		fmt.Fprintln(os.Stderr, quad.Disassemble(i+1, q))
	}

	ints, floats, strs := prog.Consts.Counts()
	fmt.Fprintln(os.Stderr, color.YellowString("-- constants: %d int, %d float, %d string --", ints, floats, strs))
}
