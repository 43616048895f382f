package constpool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gothird/internal/constpool"
	"github.com/jcorbin/gothird/internal/memmap"
	"github.com/jcorbin/gothird/internal/types"
)

func TestInternDeduplicates(t *testing.T) {
	var pool constpool.Pool

	a := pool.Intern("42", types.Int)
	b := pool.Intern("42", types.Int)
	require.Same(t, a, b)

	c := pool.Intern("7", types.Int)
	assert.NotEqual(t, a.Addr, c.Addr)
	assert.Equal(t, a.Addr+1, c.Addr)
}

func TestInternPerType(t *testing.T) {
	var pool constpool.Pool

	i := pool.Intern("1", types.Int)
	f := pool.Intern("1.0", types.Float)
	s := pool.Intern("hi", types.String)

	assert.Equal(t, memmap.Base(memmap.KInt), i.Addr)
	assert.Equal(t, memmap.Base(memmap.KFloat), f.Addr)
	assert.Equal(t, memmap.Base(memmap.KStr), s.Addr)
}

func TestCounts(t *testing.T) {
	var pool constpool.Pool
	pool.Intern("1", types.Int)
	pool.Intern("2", types.Int)
	pool.Intern("1.5", types.Float)
	pool.Intern("hi", types.String)
	pool.Intern("hi", types.String) // repeat, should not double-count

	ints, floats, strs := pool.Counts()
	assert.Equal(t, 2, ints)
	assert.Equal(t, 1, floats)
	assert.Equal(t, 1, strs)
	assert.Len(t, pool.All(), 4)
}
