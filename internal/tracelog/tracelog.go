// Package tracelog decouples the VM's dispatch loop from trace log I/O:
// each traced quadruple is formatted and handed to a channel, drained by
// a background goroutine managed through golang.org/x/sync/errgroup, so
// a slow log writer only stalls execution once 64 lines are queued.
package tracelog

import (
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/gothird/internal/quad"
)

// Drain receives disassembled trace lines off the VM's hot path and
// writes them out on its own goroutine.
type Drain struct {
	lines chan string
	group *errgroup.Group
}

// Start launches the drain goroutine, calling sink for every line until
// Close is called.
func Start(sink func(line string)) *Drain {
	g := new(errgroup.Group)
	lines := make(chan string, 64)
	g.Go(func() error {
		for line := range lines {
			sink(line)
		}
		return nil
	})
	return &Drain{lines: lines, group: g}
}

// Trace formats and enqueues one quadruple. Matches vm.Option's trace
// callback shape.
func (d *Drain) Trace(pc int, q quad.Quad) {
	d.lines <- quad.Disassemble(pc, q)
}

// Close stops accepting further lines and waits for the drain goroutine
// to flush the remainder.
func (d *Drain) Close() error {
	close(d.lines)
	return d.group.Wait()
}
