package function

import (
	"github.com/streamql/streamql/internal/binstate"
	"github.com/streamql/streamql/types"
)

func init() {
	registerAggregate("count", AggregateFunc{
		Signature: Signature{
			Args: []types.Kind{types.Null},
			ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
				return types.Int64Type, nil
			},
		},
		NewAccumulator: func(argType types.DataType) Accumulator {
			return &countAccumulator{}
		},
	})

	registerAggregate("sum", AggregateFunc{
		Signature: Signature{
			Args: []types.Kind{types.Float64},
			ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
				return argTypes[0], nil
			},
		},
		NewAccumulator: func(argType types.DataType) Accumulator {
			return &sumAccumulator{kind: argType.Kind}
		},
	})

	registerAggregate("avg", AggregateFunc{
		Signature: Signature{
			Args: []types.Kind{types.Float64},
			ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
				return types.Float64Type, nil
			},
		},
		NewAccumulator: func(argType types.DataType) Accumulator {
			return &avgAccumulator{}
		},
	})

	registerAggregate("min", AggregateFunc{
		Signature: Signature{
			Args: []types.Kind{types.Float64},
			ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
				return argTypes[0], nil
			},
		},
		NewAccumulator: func(argType types.DataType) Accumulator {
			return &extremumAccumulator{kind: argType.Kind, keepMin: true}
		},
	})

	registerAggregate("max", AggregateFunc{
		Signature: Signature{
			Args: []types.Kind{types.Float64},
			ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
				return argTypes[0], nil
			},
		},
		NewAccumulator: func(argType types.DataType) Accumulator {
			return &extremumAccumulator{kind: argType.Kind, keepMin: false}
		},
	})
}

// countAccumulator counts non-null input rows.
type countAccumulator struct {
	n int64
}

func (a *countAccumulator) Accumulate(arg types.Scalar) error {
	if !arg.Null {
		a.n++
	}
	return nil
}

func (a *countAccumulator) Result() types.Scalar { return types.IntScalar(types.Int64, a.n) }

func (a *countAccumulator) SaveState() ([]byte, error) { return binstate.Encode(a.n) }

func (a *countAccumulator) LoadState(data []byte) error {
	return binstate.Decode(data, &a.n)
}

func (a *countAccumulator) Clone() Accumulator {
	cp := *a
	return &cp
}

// sumAccumulator sums non-null numeric input.
type sumAccumulator struct {
	kind  types.Kind
	total float64
	any   bool
}

type sumState struct {
	Total float64
	Any   bool
}

func (a *sumAccumulator) Accumulate(arg types.Scalar) error {
	if arg.Null {
		return nil
	}
	a.any = true
	a.total += numericValue(arg)
	return nil
}

func (a *sumAccumulator) Result() types.Scalar {
	if !a.any {
		return types.NullScalar(a.kind)
	}
	return scalarFromFloat(a.kind, a.total)
}

func (a *sumAccumulator) SaveState() ([]byte, error) {
	return binstate.Encode(sumState{Total: a.total, Any: a.any})
}

func (a *sumAccumulator) LoadState(data []byte) error {
	var st sumState
	if err := binstate.Decode(data, &st); err != nil {
		return err
	}
	a.total, a.any = st.Total, st.Any
	return nil
}

func (a *sumAccumulator) Clone() Accumulator {
	cp := *a
	return &cp
}

// avgAccumulator tracks a running sum and count to compute the mean.
type avgAccumulator struct {
	total float64
	n     int64
}

type avgState struct {
	Total float64
	N     int64
}

func (a *avgAccumulator) Accumulate(arg types.Scalar) error {
	if arg.Null {
		return nil
	}
	a.total += numericValue(arg)
	a.n++
	return nil
}

func (a *avgAccumulator) Result() types.Scalar {
	if a.n == 0 {
		return types.NullScalar(types.Float64)
	}
	return types.FloatScalar(types.Float64, a.total/float64(a.n))
}

func (a *avgAccumulator) SaveState() ([]byte, error) {
	return binstate.Encode(avgState{Total: a.total, N: a.n})
}

func (a *avgAccumulator) LoadState(data []byte) error {
	var st avgState
	if err := binstate.Decode(data, &st); err != nil {
		return err
	}
	a.total, a.n = st.Total, st.N
	return nil
}

func (a *avgAccumulator) Clone() Accumulator {
	cp := *a
	return &cp
}

// extremumAccumulator tracks a running min or max.
type extremumAccumulator struct {
	kind    types.Kind
	keepMin bool
	value   float64
	any     bool
}

type extremumState struct {
	Value float64
	Any   bool
}

func (a *extremumAccumulator) Accumulate(arg types.Scalar) error {
	if arg.Null {
		return nil
	}
	v := numericValue(arg)
	if !a.any || (a.keepMin && v < a.value) || (!a.keepMin && v > a.value) {
		a.value = v
		a.any = true
	}
	return nil
}

func (a *extremumAccumulator) Result() types.Scalar {
	if !a.any {
		return types.NullScalar(a.kind)
	}
	return scalarFromFloat(a.kind, a.value)
}

func (a *extremumAccumulator) SaveState() ([]byte, error) {
	return binstate.Encode(extremumState{Value: a.value, Any: a.any})
}

func (a *extremumAccumulator) LoadState(data []byte) error {
	var st extremumState
	if err := binstate.Decode(data, &st); err != nil {
		return err
	}
	a.value, a.any = st.Value, st.Any
	return nil
}

func (a *extremumAccumulator) Clone() Accumulator {
	cp := *a
	return &cp
}

func numericValue(s types.Scalar) float64 {
	switch s.Kind {
	case types.Int8, types.Int16, types.Int32, types.Int64:
		return float64(s.Int)
	case types.Float32, types.Float64:
		return s.Float
	default:
		return 0
	}
}

func scalarFromFloat(kind types.Kind, v float64) types.Scalar {
	switch kind {
	case types.Int8, types.Int16, types.Int32, types.Int64:
		return types.IntScalar(kind, int64(v))
	default:
		return types.FloatScalar(kind, v)
	}
}
