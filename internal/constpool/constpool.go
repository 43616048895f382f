// Package constpool interns Dusty literals (int, float, and string
// constants) into the constant segments of the memory map, returning the
// same address for repeated occurrences of the same literal text.
//
// The interning scheme mirrors the teacher's own string table
// (symbols.go's symbols type: a slice of the interned text plus a
// map back to its index), generalized here to three constant kinds and to
// return memmap addresses instead of small integer ids.
package constpool

import (
	"github.com/jcorbin/gothird/internal/memmap"
	"github.com/jcorbin/gothird/internal/types"
)

// Const records one interned literal.
type Const struct {
	Text string
	Type types.Type
	Addr int
}

// Pool interns literal text per type into its constant segment.
type Pool struct {
	byText [3]map[string]*Const // indexed by types.Int/Float/String
	counts [3]int
	all    []*Const
}

func kindIndex(t types.Type) int {
	switch t {
	case types.Int:
		return 0
	case types.Float:
		return 1
	case types.String:
		return 2
	default:
		panic("constpool: not a constant type")
	}
}

// Intern returns the address of literalText's constant of the given type,
// allocating the next free address in that type's constant segment the
// first time the text is seen.
func (p *Pool) Intern(literalText string, t types.Type) *Const {
	i := kindIndex(t)
	if p.byText[i] == nil {
		p.byText[i] = make(map[string]*Const)
	}
	if c, ok := p.byText[i][literalText]; ok {
		return c
	}

	base := memmap.Base(memmap.ConstSegmentFor(t))
	c := &Const{
		Text: literalText,
		Type: t,
		Addr: base + p.counts[i],
	}
	p.byText[i][literalText] = c
	p.counts[i]++
	p.all = append(p.all, c)
	return c
}

// Counts returns the number of interned int, float, and string constants
// respectively, as reported by the CLI's --dump output.
func (p *Pool) Counts() (ints, floats, strings int) {
	for _, c := range p.all {
		switch c.Type {
		case types.Int:
			ints++
		case types.Float:
			floats++
		case types.String:
			strings++
		}
	}
	return ints, floats, strings
}

// All returns every interned constant, in interning order.
func (p *Pool) All() []*Const {
	return p.all
}
