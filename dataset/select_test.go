package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql/types"
)

func TestSelectRowsCarvesOutSubsetPreservingOrder(t *testing.T) {
	schema := twoColSchema(t)
	ds, err := New(schema, twoColArrays(t, []int64{10, 20, 30}, []float64{1, 2, 3}), 0)
	require.NoError(t, err)

	out, err := SelectRows(ds, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, int64(30), out.EventTime(0))
	assert.Equal(t, int64(10), out.EventTime(1))
	assert.Equal(t, 3.0, out.Column(1).ScalarValue(0).Float)
	assert.Equal(t, 1.0, out.Column(1).ScalarValue(1).Float)
}

func TestSelectRowsEmptySelectionYieldsEmptyDataSet(t *testing.T) {
	schema := twoColSchema(t)
	ds, err := New(schema, twoColArrays(t, []int64{10}, []float64{1}), 0)
	require.NoError(t, err)

	out, err := SelectRows(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
}

func TestSelectRowsCarriesNullValues(t *testing.T) {
	schema, err := types.NewSchema([]types.Field{
		types.NewField("event_time", types.TimestampType(types.Millisecond)),
		types.NewField("amount", types.Float64Type),
	})
	require.NoError(t, err)

	timeB := types.NewTimestampBuilder(types.Millisecond)
	timeB.Append(1)
	timeB.Append(2)
	amountB := types.NewFloatBuilder(types.Float64)
	amountB.AppendNull()
	amountB.Append(5.0)
	ds, err := New(schema, []types.Array{timeB.Finish(), amountB.Finish()}, 0)
	require.NoError(t, err)

	out, err := SelectRows(ds, []int{0, 1})
	require.NoError(t, err)
	assert.True(t, out.Column(1).IsNull(0))
	assert.False(t, out.Column(1).IsNull(1))
}
