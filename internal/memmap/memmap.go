// Package memmap defines the Dusty Memory Map: the eleven fixed address
// segments partitioning global/local/constant, int/float/string, and
// regular/temporary storage into 2,000-wide windows, per spec §4.1.
//
// The exact ranges are part of the wire contract (spec §6.2's promise that
// a saved quadruple stream is portable), so they are reproduced verbatim
// from original_source/src/virtual_machine.rs's map_address and
// original_source/src/structs/quad_data.rs's memmory_config.
package memmap

import (
	"fmt"

	"github.com/jcorbin/gothird/internal/types"
)

// Segment names one of the eleven address ranges.
type Segment int

const (
	GInt Segment = iota
	GFloat
	GTInt
	GTFloat
	LInt
	LFloat
	LTInt
	LTFloat
	KInt
	KFloat
	KStr

	numSegments
)

// Width is the size of every segment's address window.
const Width = 2000

type bounds struct {
	base, top int
	seg       Segment
}

var allBounds = [numSegments]bounds{
	GInt:    {1000, 2999, GInt},
	GFloat:  {3000, 4999, GFloat},
	GTInt:   {5000, 6999, GTInt},
	GTFloat: {7000, 8999, GTFloat},
	LInt:    {11000, 12999, LInt},
	LFloat:  {13000, 14999, LFloat},
	LTInt:   {15000, 16999, LTInt},
	LTFloat: {17000, 18999, LTFloat},
	KInt:    {21000, 22999, KInt},
	KFloat:  {23000, 24999, KFloat},
	KStr:    {25000, 26999, KStr},
}

// Base returns the first address of seg.
func Base(seg Segment) int { return allBounds[seg].base }

// AddressOutOfRangeError indicates an address that does not lie within any
// declared segment.
type AddressOutOfRangeError struct{ Addr int }

func (e AddressOutOfRangeError) Error() string {
	return fmt.Sprintf("address out of range: %d", e.Addr)
}

// Classify maps an absolute address to its segment and zero-based offset
// within that segment.
func Classify(addr int) (Segment, int, error) {
	for _, b := range allBounds {
		if addr >= b.base && addr <= b.top {
			return b.seg, addr - b.base, nil
		}
	}
	return 0, 0, AddressOutOfRangeError{addr}
}

// SegmentFor returns the segment that a value of the given type, scope, and
// kind is stored in. Global-ness is the only scope distinction that matters
// to the memory map: global selects the Global-* segments, otherwise the
// Local-* segments.
func SegmentFor(t types.Type, global bool, kind types.Kind) Segment {
	switch {
	case t == types.Int && global && kind == types.Regular:
		return GInt
	case t == types.Float && global && kind == types.Regular:
		return GFloat
	case t == types.Int && global && kind == types.Temporary:
		return GTInt
	case t == types.Float && global && kind == types.Temporary:
		return GTFloat
	case t == types.Int && !global && kind == types.Regular:
		return LInt
	case t == types.Float && !global && kind == types.Regular:
		return LFloat
	case t == types.Int && !global && kind == types.Temporary:
		return LTInt
	case t == types.Float && !global && kind == types.Temporary:
		return LTFloat
	default:
		panic(fmt.Sprintf("memmap: no regular/temporary segment for %v global=%v %v", t, global, kind))
	}
}

// ConstSegmentFor returns the segment constants of the given type are
// interned into.
func ConstSegmentFor(t types.Type) Segment {
	switch t {
	case types.Int:
		return KInt
	case types.Float:
		return KFloat
	case types.String:
		return KStr
	default:
		panic(fmt.Sprintf("memmap: no constant segment for %v", t))
	}
}
