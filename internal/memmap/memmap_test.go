package memmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gothird/internal/memmap"
	"github.com/jcorbin/gothird/internal/types"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name string
		addr int
		seg  memmap.Segment
		off  int
	}{
		{"global int base", 1000, memmap.GInt, 0},
		{"global int interior", 1500, memmap.GInt, 500},
		{"global float base", 3000, memmap.GFloat, 0},
		{"local int base", 11000, memmap.LInt, 0},
		{"local temp float base", 17000, memmap.LTFloat, 0},
		{"const int base", 21000, memmap.KInt, 0},
		{"const string base", 25000, memmap.KStr, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			seg, off, err := memmap.Classify(tc.addr)
			require.NoError(t, err)
			assert.Equal(t, tc.seg, seg)
			assert.Equal(t, tc.off, off)
		})
	}
}

func TestClassifyOutOfRange(t *testing.T) {
	for _, addr := range []int{0, 18999 + 1, 9000, 20999, 27000} {
		_, _, err := memmap.Classify(addr)
		assert.Error(t, err)
		assert.IsType(t, memmap.AddressOutOfRangeError{}, err)
	}
}

func TestSegmentsDoNotOverlap(t *testing.T) {
	// Classify reports the first segment holding an address, so an address
	// shared by two segments comes back under the wrong one for one of them.
	for seg := memmap.GInt; seg <= memmap.KStr; seg++ {
		base := memmap.Base(seg)
		for off := 0; off < memmap.Width; off++ {
			got, gotOff, err := memmap.Classify(base + off)
			if err != nil || got != seg || gotOff != off {
				t.Fatalf("address %d classified as (%v, %d, %v), want (%v, %d)", base+off, got, gotOff, err, seg, off)
			}
		}
	}
}

func TestSegmentFor(t *testing.T) {
	assert.Equal(t, memmap.GInt, memmap.SegmentFor(types.Int, true, types.Regular))
	assert.Equal(t, memmap.GFloat, memmap.SegmentFor(types.Float, true, types.Regular))
	assert.Equal(t, memmap.GTInt, memmap.SegmentFor(types.Int, true, types.Temporary))
	assert.Equal(t, memmap.GTFloat, memmap.SegmentFor(types.Float, true, types.Temporary))
	assert.Equal(t, memmap.LInt, memmap.SegmentFor(types.Int, false, types.Regular))
	assert.Equal(t, memmap.LFloat, memmap.SegmentFor(types.Float, false, types.Regular))
	assert.Equal(t, memmap.LTInt, memmap.SegmentFor(types.Int, false, types.Temporary))
	assert.Equal(t, memmap.LTFloat, memmap.SegmentFor(types.Float, false, types.Temporary))
}

func TestConstSegmentFor(t *testing.T) {
	assert.Equal(t, memmap.KInt, memmap.ConstSegmentFor(types.Int))
	assert.Equal(t, memmap.KFloat, memmap.ConstSegmentFor(types.Float))
	assert.Equal(t, memmap.KStr, memmap.ConstSegmentFor(types.String))
}

func TestBase(t *testing.T) {
	assert.Equal(t, 1000, memmap.Base(memmap.GInt))
	assert.Equal(t, 25000, memmap.Base(memmap.KStr))
}
