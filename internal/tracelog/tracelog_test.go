package tracelog_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gothird/internal/quad"
	"github.com/jcorbin/gothird/internal/tracelog"
	"github.com/jcorbin/gothird/internal/types"
)

func TestDrainDeliversEveryLine(t *testing.T) {
	var mu sync.Mutex
	var lines []string

	drain := tracelog.Start(func(line string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, line)
	})

	for pc := 1; pc <= 5; pc++ {
		drain.Trace(pc, quad.Quad{Op: types.Add})
	}

	require.NoError(t, drain.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, lines, 5)
}

func TestDrainCloseAfterSingleTrace(t *testing.T) {
	drain := tracelog.Start(func(string) {})
	drain.Trace(1, quad.Quad{Op: types.End})
	require.NoError(t, drain.Close())
}
