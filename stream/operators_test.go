package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/planner"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/stream/checkpoint"
	"github.com/streamql/streamql/types"
)

func testInputSchema(t *testing.T) *types.Schema {
	t.Helper()
	schema, err := types.NewSchema([]types.Field{
		types.NewField("event_time", types.TimestampType(types.Millisecond)),
		types.NewField("amount", types.Float64Type),
	})
	require.NoError(t, err)
	return schema
}

func testDataSet(t *testing.T, schema *types.Schema, times []int64, amounts []float64) *dataset.DataSet {
	t.Helper()
	timeB := types.NewTimestampBuilder(types.Millisecond)
	amountB := types.NewFloatBuilder(types.Float64)
	for i := range times {
		timeB.Append(times[i])
		amountB.Append(amounts[i])
	}
	ds, err := dataset.New(schema, []types.Array{timeB.Finish(), amountB.Finish()}, 0)
	require.NoError(t, err)
	return ds
}

func TestFilterKeepsOnlyMatchingRows(t *testing.T) {
	schema := testInputSchema(t)
	ds := testDataSet(t, schema, []int64{1, 2, 3}, []float64{-1, 5, 10})

	pred := &expr.BinaryExpr{
		Op:  ast.Gt,
		Lhs: &expr.ColumnExpr{Idx: 1, Typ: types.Float64Type},
		Rhs: &expr.LiteralExpr{Value: types.FloatScalar(types.Float64, 0)},
		Typ: types.BooleanType,
	}

	upstream := make(chan Result, 1)
	ctx := context.Background()
	out := Filter(ctx, upstream, pred)

	upstream <- Result{Event: &DataSetEvent{DataSet: ds}}
	close(upstream)

	res := <-out
	require.NoError(t, res.Err)
	dse := res.Event.(*DataSetEvent)
	assert.Equal(t, 2, dse.DataSet.NumRows())

	_, ok := <-out
	assert.False(t, ok, "channel must close once upstream closes")
}

func TestFilterStopsAfterExitBarrier(t *testing.T) {
	upstream := make(chan Result, 1)
	ctx := context.Background()
	out := Filter(ctx, upstream, &expr.LiteralExpr{Value: types.BooleanScalar(true)})

	b := checkpoint.NewBarrier(0, 0, true)
	upstream <- Result{Event: &CheckPointEvent{Barrier: b}}

	res := <-out
	require.NoError(t, res.Err)
	cpe := res.Event.(*CheckPointEvent)
	assert.True(t, cpe.Barrier.IsExit)

	select {
	case _, ok := <-out:
		assert.False(t, ok, "operator must close its output after forwarding an exit barrier")
	case <-time.After(time.Second):
		t.Fatal("operator did not return after the exit barrier")
	}
}

func TestProjectSchemaAppendsTrailingTimeField(t *testing.T) {
	// projection of just "amount"
	timeField := types.NewField("event_time", types.TimestampType(types.Millisecond))
	fields := []planner.ProjectionField{{Name: "amount", Expr: &expr.ColumnExpr{Idx: 1, Typ: types.Float64Type}}}
	schema, timeIdx, err := ProjectSchema(fields, timeField)
	require.NoError(t, err)
	assert.Equal(t, 1, timeIdx)
	assert.Equal(t, 2, schema.Len())
	assert.Equal(t, "_event_time", schema.Field(1).Name)
	assert.Equal(t, types.TimestampType(types.Millisecond), schema.Field(1).DataType)
}

func TestAggregateSchemaAppendsWindowStartField(t *testing.T) {
	fields := []planner.ProjectionField{{Name: "total", Expr: &expr.ColumnExpr{Idx: 1, Typ: types.Float64Type}}}
	schema, timeIdx, err := AggregateSchema(fields)
	require.NoError(t, err)
	assert.Equal(t, 1, timeIdx)
	assert.Equal(t, "_window_start", schema.Field(1).Name)
	assert.Equal(t, types.TimestampType(types.Millisecond), schema.Field(1).DataType)
}

func TestProjectEvaluatesFieldsAndCarriesTimeColumn(t *testing.T) {
	schema := testInputSchema(t)
	ds := testDataSet(t, schema, []int64{10, 20}, []float64{1.0, 2.0})

	fields := []planner.ProjectionField{{
		Name: "doubled",
		Expr: &expr.BinaryExpr{
			Op:  ast.Multiply,
			Lhs: &expr.ColumnExpr{Idx: 1, Typ: types.Float64Type},
			Rhs: &expr.LiteralExpr{Value: types.FloatScalar(types.Float64, 2)},
			Typ: types.Float64Type,
		},
	}}
	outSchema, outTimeIdx, err := ProjectSchema(fields, schema.Field(0))
	require.NoError(t, err)

	upstream := make(chan Result, 1)
	ctx := context.Background()
	out := Project(ctx, upstream, fields, 0, outSchema, outTimeIdx)

	upstream <- Result{Event: &DataSetEvent{DataSet: ds}}
	close(upstream)

	res := <-out
	require.NoError(t, res.Err)
	dse := res.Event.(*DataSetEvent)
	require.Equal(t, 2, dse.DataSet.NumRows())
	assert.Equal(t, 2.0, dse.DataSet.Column(0).ScalarValue(0).Float)
	assert.Equal(t, 4.0, dse.DataSet.Column(0).ScalarValue(1).Float)
	assert.Equal(t, int64(10), dse.DataSet.EventTime(0))
}

func TestProjectStopsAfterExitBarrier(t *testing.T) {
	upstream := make(chan Result, 1)
	ctx := context.Background()
	out := Project(ctx, upstream, nil, 0, nil, 0)

	b := checkpoint.NewBarrier(0, 0, true)
	upstream <- Result{Event: &CheckPointEvent{Barrier: b}}

	res := <-out
	require.NoError(t, res.Err)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("operator did not return after the exit barrier")
	}
}
