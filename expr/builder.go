package expr

import "github.com/streamql/streamql/types"

// appendScalar appends v onto a Builder returned by types.NewBuilder,
// dispatching on its concrete type the way types.NewBuilder dispatches on
// DataType.Kind.
func appendScalar(b any, v types.Scalar) {
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

// finishBuilder calls Finish on a Builder returned by types.NewBuilder and
// returns the resulting Array.
func finishBuilder(b any) types.Array {
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
