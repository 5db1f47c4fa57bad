package dataset

import "github.com/streamql/streamql/types"

// SelectRows builds a new DataSet containing only the given row indices of
// ds, in order, preserving its schema and time column index. Used to carve
// out the per-window and per-group row subsets the aggregate operator
// accumulates over.
func SelectRows(ds *DataSet, rows []int) (*DataSet, error) {
	n := ds.Schema().Len()
	cols := make([]types.Array, n)
	for c := 0; c < n; c++ {
		src := ds.Column(c)
		b := newBuilderFor(src.DataType())
		for _, r := range rows {
			appendScalarTo(b, src.ScalarValue(r))
		}
		cols[c] = finishBuilderFrom(b)
	}
	return New(ds.Schema(), cols, ds.TimeIdx())
}

// newBuilderFor, appendScalarTo and finishBuilderFrom mirror the dispatch
// expr.appendScalar/finishBuilder perform, duplicated here because dataset
// cannot import expr (expr.PhysicalExpr.Eval already depends on dataset).
func newBuilderFor(dt types.DataType) any {
	return types.NewBuilder(dt)
}

func appendScalarTo(b any, v types.Scalar) {
	switch bb := b.(type) {
	case *types.IntBuilder:
		if v.Null {
			bb.AppendNull()
		} else {
			bb.Append(v.Int)
		}
	case *types.FloatBuilder:
		if v.Null {
			bb.AppendNull()
		} else {
			bb.Append(v.Float)
		}
	case *types.BooleanBuilder:
		if v.Null {
			bb.AppendNull()
		} else {
			bb.Append(v.Boolean)
		}
	case *types.TimestampBuilder:
		if v.Null {
			bb.AppendNull()
		} else {
			bb.Append(v.Timestamp)
		}
	case *types.StringBuilder:
		if v.Null {
			bb.AppendNull()
		} else {
			bb.Append(v.Str)
		}
	case *types.NullBuilder:
		bb.AppendNull()
	}
}

func finishBuilderFrom(b any) types.Array {
	switch bb := b.(type) {
	case *types.IntBuilder:
		return bb.Finish()
	case *types.FloatBuilder:
		return bb.Finish()
	case *types.BooleanBuilder:
		return bb.Finish()
	case *types.TimestampBuilder:
		return bb.Finish()
	case *types.StringBuilder:
		return bb.Finish()
	case *types.NullBuilder:
		return bb.Finish()
	default:
		return nil
	}
}
