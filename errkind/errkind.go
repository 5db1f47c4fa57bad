// Package errkind declares the engine's error kinds as go-errors.v1 Kinds,
// one per failure mode in the error handling design: parsing, planning,
// evaluation, state restore and I/O.
package errkind

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ParseError reports a SQL syntax error: offset and production context.
	ParseError = errors.NewKind("parse error at offset %d in %s: %s")

	// NameError reports a Column that does not resolve to exactly one field
	// in the current relational scope.
	NameError = errors.NewKind("unresolved name %q")

	// TypeError reports an arity or type mismatch on a function call.
	TypeError = errors.NewKind("type error: %s")

	// UngroupedColumn reports a projection column that is neither grouped
	// nor aggregated.
	UngroupedColumn = errors.NewKind("column %q must appear in GROUP BY or be aggregated")

	// InvalidSchema reports a duplicate field name in a Schema.
	InvalidSchema = errors.NewKind("invalid schema: duplicate field name %q")

	// EvalError reports a runtime failure evaluating a PhysicalExpr.
	EvalError = errors.NewKind("evaluation error: %s")

	// IoError wraps a failure reading an external source (e.g. CSV).
	IoError = errors.NewKind("io error: %s")

	// StateError reports a failure decoding a checkpointed state blob.
	StateError = errors.NewKind("state error: %s")

	// BarrierTimeout reports a checkpoint barrier that did not complete
	// within its deadline.
	BarrierTimeout = errors.NewKind("barrier %s timed out waiting on %d node(s)")

	// ConfigError reports an invalid stream.Config, e.g. a checkpoint
	// interval below the 1ms minimum. Not named in spec.md's error kind
	// list, which only covers parse/plan/eval/state failures; added for
	// the ambient config-validation concern every operator-level config
	// layer in the pack carries.
	ConfigError = errors.NewKind("config error: %s")
)
