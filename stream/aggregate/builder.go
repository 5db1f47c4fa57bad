package aggregate

import "github.com/streamql/streamql/types"

// newBuilderFor, appendScalarTo and finishBuilderFrom mirror the dispatch
// expr.appendScalar/finishBuilder perform; duplicated per package boundary
// (aggregate cannot import expr's unexported helpers, and dataset cannot
// import expr at all since expr already depends on dataset).
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
