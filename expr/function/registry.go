// Package function is the scalar and aggregate function registry: a
// process-lifetime, immutable set of signatures populated once via init(),
// the same shape as the token keyword table in sql/token.
package function

import "github.com/streamql/streamql/types"

// Signature describes a function's argument types and return type. Arity
// is len(Args); variadic functions (coalesce) set Variadic true and the
// last Args entry is repeated for any additional argument.
type Signature struct {
	Args      []types.Kind
	Variadic  bool
	ReturnFor func(argTypes []types.DataType) (types.DataType, error)
}

// ScalarFunc evaluates a scalar function over per-row argument values,
// returning the result for one row. Aggregation-free.
type ScalarFunc func(args []types.Scalar) (types.Scalar, error)

// Accumulator is one group's running aggregate state for a single
// aggregate call.
type Accumulator interface {
	// Accumulate folds one input scalar (one row's argument value) into
	// the running state.
	Accumulate(arg types.Scalar) error
	// Result returns the aggregate's current value.
	Result() types.Scalar
	// SaveState returns an opaque, binstate-encoded snapshot of the
	// accumulator.
	SaveState() ([]byte, error)
	// LoadState restores the accumulator from a snapshot produced by
	// SaveState.
	LoadState(data []byte) error
	// Clone returns an independent copy with the same accumulated state,
	// used when a template expression tree is copied into a new group.
	Clone() Accumulator
}

// AggregateFunc describes an aggregate function: its signature and a
// factory for a fresh, zero-valued Accumulator.
type AggregateFunc struct {
	Signature Signature
	NewAccumulator func(argType types.DataType) Accumulator
}

var scalars = map[string]scalarEntry{}
var aggregates = map[string]AggregateFunc{}

type scalarEntry struct {
	Signature Signature
	Func      ScalarFunc
}

func registerScalar(name string, sig Signature, fn ScalarFunc) {
	scalars[name] = scalarEntry{Signature: sig, Func: fn}
}

func registerAggregate(name string, af AggregateFunc) {
	aggregates[name] = af
}

// LookupScalar returns the scalar function named name, if registered.
func LookupScalar(name string) (Signature, ScalarFunc, bool) {
	e, ok := scalars[name]
	return e.Signature, e.Func, ok
}

// LookupAggregate returns the aggregate function named name, if registered.
func LookupAggregate(name string) (AggregateFunc, bool) {
	af, ok := aggregates[name]
	return af, ok
}

// IsAggregate reports whether name is a registered aggregate function.
func IsAggregate(name string) bool {
	_, ok := aggregates[name]
	return ok
}
