package valuearena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcorbin/minic/internal/valuearena"
)

func TestStoreLoad(t *testing.T) {
	var c valuearena.Core
	require.NoError(t, c.Store(10, valuearena.Cell{I: 42}))
	got, err := c.Load(10)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.I)

	// unwritten addresses read back zero
	got, err = c.Load(9)
	require.NoError(t, err)
	assert.Equal(t, valuearena.Cell{}, got)
}

func TestStoreSpansPages(t *testing.T) {
	var c valuearena.Core
	c.PageSize = 4
	values := make([]valuearena.Cell, 10)
	for i := range values {
		values[i] = valuearena.Cell{I: int64(i)}
	}
	require.NoError(t, c.Store(2, values...))

	buf := make([]valuearena.Cell, 10)
	require.NoError(t, c.LoadInto(2, buf))
	for i, cell := range buf {
		assert.Equal(t, int64(i), cell.I, "cell %d", i)
	}
}

func TestMarkRelease(t *testing.T) {
	var c valuearena.Core
	require.NoError(t, c.Store(0, valuearena.Cell{I: 1}))
	mark := c.Mark()
	require.NoError(t, c.Store(1, valuearena.Cell{I: 2}, valuearena.Cell{I: 3}))
	assert.EqualValues(t, 3, c.High())

	c.Release(mark)
	assert.EqualValues(t, mark, c.High())

	got, err := c.Load(1)
	require.NoError(t, err)
	assert.Equal(t, valuearena.Cell{}, got, "released cell must read back zero")
}

func TestLimit(t *testing.T) {
	var c valuearena.Core
	c.Limit = 8
	err := c.Store(8, valuearena.Cell{I: 1})
	require.Error(t, err)
	var lim valuearena.LimitError
	require.ErrorAs(t, err, &lim)
}
