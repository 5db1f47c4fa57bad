package types

import "fmt"

// Scalar is the value-form of one cell: a tagged union over the same kinds
// as DataType. Concrete fields keep it allocation-free for the numeric and
// boolean cases.
type Scalar struct {
	Kind      Kind
	Null      bool
	Int       int64   // Int8, Int16, Int32, Int64
	Float     float64 // Float32, Float64
	Boolean   bool
	Timestamp int64 // raw value in the column's TimeUnit
	Str       string
}

// NullScalar returns the null scalar of kind.
func NullScalar(kind Kind) Scalar {
	return Scalar{Kind: kind, Null: true}
}

func IntScalar(kind Kind, v int64) Scalar {
	return Scalar{Kind: kind, Int: v}
}

func FloatScalar(kind Kind, v float64) Scalar {
	return Scalar{Kind: kind, Float: v}
}

func BooleanScalar(v bool) Scalar {
	return Scalar{Kind: Boolean, Boolean: v}
}

func TimestampScalar(v int64) Scalar {
	return Scalar{Kind: Timestamp, Timestamp: v}
}

func StringScalar(v string) Scalar {
	return Scalar{Kind: String, Str: v}
}

// Equal reports structural equality; two Null scalars of the same Kind are
// equal (GroupedKey relies on this for grouping).
func (s Scalar) Equal(other Scalar) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Null || other.Null {
		return s.Null == other.Null
	}
	switch s.Kind {
	case Int8, Int16, Int32, Int64:
		return s.Int == other.Int
	case Float32, Float64:
		return s.Float == other.Float
	case Boolean:
		return s.Boolean == other.Boolean
	case Timestamp:
		return s.Timestamp == other.Timestamp
	case String:
		return s.Str == other.Str
	case Null:
		return true
	default:
		return false
	}
}

func (s Scalar) String() string {
	if s.Null {
		return "NULL"
	}
	switch s.Kind {
	case Int8, Int16, Int32, Int64:
		return fmt.Sprintf("%d", s.Int)
	case Float32, Float64:
		return fmt.Sprintf("%g", s.Float)
	case Boolean:
		return fmt.Sprintf("%t", s.Boolean)
	case Timestamp:
		return fmt.Sprintf("%d", s.Timestamp)
	case String:
		return s.Str
	default:
		return "NULL"
	}
}
