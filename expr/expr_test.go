package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/expr/function"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/types"
)

func oneColDataSet(t *testing.T, amounts []float64) *dataset.DataSet {
	t.Helper()
	schema, err := types.NewSchema([]types.Field{
		types.NewField("event_time", types.TimestampType(types.Millisecond)),
		types.NewField("amount", types.Float64Type),
	})
	require.NoError(t, err)
	timeB := types.NewTimestampBuilder(types.Millisecond)
	amountB := types.NewFloatBuilder(types.Float64)
	for i, a := range amounts {
		timeB.Append(int64(i))
		amountB.Append(a)
	}
	ds, err := dataset.New(schema, []types.Array{timeB.Finish(), amountB.Finish()}, 0)
	require.NoError(t, err)
	return ds
}

func TestColumnExprReadsTheUnderlyingColumn(t *testing.T) {
	ds := oneColDataSet(t, []float64{1, 2, 3})
	e := &ColumnExpr{Idx: 1, Typ: types.Float64Type}
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.Equal(t, 2.0, arr.ScalarValue(1).Float)
}

func TestColumnExprCloneReturnsSameInstance(t *testing.T) {
	e := &ColumnExpr{Idx: 0, Typ: types.Float64Type}
	assert.Same(t, e, e.Clone())
}

func TestLiteralExprBroadcastsAcrossRows(t *testing.T) {
	ds := oneColDataSet(t, []float64{1, 2, 3})
	e := &LiteralExpr{Value: types.FloatScalar(types.Float64, 9)}
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.Equal(t, 3, arr.Len())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 9.0, arr.ScalarValue(i).Float)
	}
}

func TestUnaryExprNegatesNumericValues(t *testing.T) {
	ds := oneColDataSet(t, []float64{1, -2})
	e := &UnaryExpr{
		Op:      ast.Neg,
		Operand: &ColumnExpr{Idx: 1, Typ: types.Float64Type},
		Typ:     types.Float64Type,
	}
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.Equal(t, -1.0, arr.ScalarValue(0).Float)
	assert.Equal(t, 2.0, arr.ScalarValue(1).Float)
}

func TestUnaryExprNotNegatesBoolean(t *testing.T) {
	e := &UnaryExpr{Op: ast.Not, Operand: &LiteralExpr{Value: types.BooleanScalar(true)}, Typ: types.BooleanType}
	ds := oneColDataSet(t, []float64{1})
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.False(t, arr.ScalarValue(0).Boolean)
}

func TestUnaryExprPropagatesNull(t *testing.T) {
	timeB := types.NewTimestampBuilder(types.Millisecond)
	timeB.Append(0)
	amountB := types.NewFloatBuilder(types.Float64)
	amountB.AppendNull()
	schema, err := types.NewSchema([]types.Field{
		types.NewField("event_time", types.TimestampType(types.Millisecond)),
		types.NewField("amount", types.Float64Type),
	})
	require.NoError(t, err)
	ds, err := dataset.New(schema, []types.Array{timeB.Finish(), amountB.Finish()}, 0)
	require.NoError(t, err)

	e := &UnaryExpr{Op: ast.Neg, Operand: &ColumnExpr{Idx: 1, Typ: types.Float64Type}, Typ: types.Float64Type}
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.True(t, arr.ScalarValue(0).Null)
}

func TestBinaryExprArithmeticWidensToFloat(t *testing.T) {
	ds := oneColDataSet(t, []float64{2})
	e := &BinaryExpr{
		Op:  ast.Plus,
		Lhs: &ColumnExpr{Idx: 1, Typ: types.Float64Type},
		Rhs: &LiteralExpr{Value: types.IntScalar(types.Int64, 3)},
		Typ: types.Float64Type,
	}
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.Equal(t, 5.0, arr.ScalarValue(0).Float)
}

func TestBinaryExprComparisonOnStrings(t *testing.T) {
	l := &LiteralExpr{Value: types.StringScalar("apple")}
	r := &LiteralExpr{Value: types.StringScalar("banana")}
	e := &BinaryExpr{Op: ast.Lt, Lhs: l, Rhs: r, Typ: types.BooleanType}
	ds := oneColDataSet(t, []float64{1})
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.True(t, arr.ScalarValue(0).Boolean)
}

func TestBinaryExprDivisionByZeroErrors(t *testing.T) {
	e := &BinaryExpr{
		Op:  ast.Divide,
		Lhs: &LiteralExpr{Value: types.FloatScalar(types.Float64, 1)},
		Rhs: &LiteralExpr{Value: types.FloatScalar(types.Float64, 0)},
		Typ: types.Float64Type,
	}
	ds := oneColDataSet(t, []float64{1})
	_, err := e.Eval(ds)
	assert.Error(t, err)
}

func TestBinaryExprNullOperandYieldsNullResult(t *testing.T) {
	e := &BinaryExpr{
		Op:  ast.Plus,
		Lhs: &LiteralExpr{Value: types.NullScalar(types.Float64)},
		Rhs: &LiteralExpr{Value: types.FloatScalar(types.Float64, 1)},
		Typ: types.Float64Type,
	}
	ds := oneColDataSet(t, []float64{1})
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.True(t, arr.ScalarValue(0).Null)
}

func TestBinaryExprAndOrOnBooleans(t *testing.T) {
	ds := oneColDataSet(t, []float64{1})
	andE := &BinaryExpr{
		Op:  ast.And,
		Lhs: &LiteralExpr{Value: types.BooleanScalar(true)},
		Rhs: &LiteralExpr{Value: types.BooleanScalar(false)},
		Typ: types.BooleanType,
	}
	arr, err := andE.Eval(ds)
	require.NoError(t, err)
	assert.False(t, arr.ScalarValue(0).Boolean)

	orE := &BinaryExpr{
		Op:  ast.Or,
		Lhs: &LiteralExpr{Value: types.BooleanScalar(true)},
		Rhs: &LiteralExpr{Value: types.BooleanScalar(false)},
		Typ: types.BooleanType,
	}
	arr, err = orE.Eval(ds)
	require.NoError(t, err)
	assert.True(t, arr.ScalarValue(0).Boolean)
}

func TestBinaryExprCloneClonesBothOperands(t *testing.T) {
	af, _ := function.LookupAggregate("sum")
	agg := &AggregateCallExpr{Acc: af.NewAccumulator(types.Float64Type), Arg: &ColumnExpr{Idx: 1, Typ: types.Float64Type}, Typ: types.Float64Type}
	e := &BinaryExpr{Op: ast.Plus, Lhs: agg, Rhs: &LiteralExpr{Value: types.FloatScalar(types.Float64, 1)}, Typ: types.Float64Type}

	clone := e.Clone().(*BinaryExpr)
	assert.NotSame(t, e.Lhs, clone.Lhs, "aggregate operand clone must be a fresh accumulator")
}

func TestScalarCallExprAppliesFunctionRowWise(t *testing.T) {
	_, upper, ok := function.LookupScalar("upper")
	require.True(t, ok)

	schema, err := types.NewSchema([]types.Field{
		types.NewField("event_time", types.TimestampType(types.Millisecond)),
		types.NewField("name", types.StringType),
	})
	require.NoError(t, err)
	timeB := types.NewTimestampBuilder(types.Millisecond)
	timeB.Append(0)
	timeB.Append(1)
	nameB := types.NewStringBuilder()
	nameB.Append("alice")
	nameB.Append("bob")
	ds, err := dataset.New(schema, []types.Array{timeB.Finish(), nameB.Finish()}, 0)
	require.NoError(t, err)

	e := &ScalarCallExpr{Fn: upper, Args: []PhysicalExpr{&ColumnExpr{Idx: 1, Typ: types.StringType}}, Typ: types.StringType}
	arr, err := e.Eval(ds)
	require.NoError(t, err)
	assert.Equal(t, "ALICE", arr.ScalarValue(0).Str)
	assert.Equal(t, "BOB", arr.ScalarValue(1).Str)
}

func TestAggregateCallExprAccumulatesAcrossEvalCalls(t *testing.T) {
	af, ok := function.LookupAggregate("sum")
	require.True(t, ok)
	e := &AggregateCallExpr{Acc: af.NewAccumulator(types.Float64Type), Arg: &ColumnExpr{Idx: 1, Typ: types.Float64Type}, Typ: types.Float64Type}

	ds1 := oneColDataSet(t, []float64{1, 2})
	_, err := e.Eval(ds1)
	require.NoError(t, err)

	ds2 := oneColDataSet(t, []float64{3})
	arr, err := e.Eval(ds2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, arr.ScalarValue(0).Float)
}

func TestAggregateCallExprStateRoundTrip(t *testing.T) {
	af, _ := function.LookupAggregate("sum")
	e := &AggregateCallExpr{Acc: af.NewAccumulator(types.Float64Type), Arg: &ColumnExpr{Idx: 1, Typ: types.Float64Type}, Typ: types.Float64Type}

	_, err := e.Eval(oneColDataSet(t, []float64{4}))
	require.NoError(t, err)

	blob, err := e.SaveState()
	require.NoError(t, err)

	restored := &AggregateCallExpr{Acc: af.NewAccumulator(types.Float64Type), Arg: &ColumnExpr{Idx: 1, Typ: types.Float64Type}, Typ: types.Float64Type}
	require.NoError(t, restored.LoadState(blob))

	arr, err := restored.Eval(oneColDataSet(t, []float64{1}))
	require.NoError(t, err)
	assert.Equal(t, 5.0, arr.ScalarValue(0).Float)
}
