// Package streamql is a continuous SQL-style stream processor over
// columnar datasets: parse a query, bind it against a schema, and run it
// as a checkpointed streaming pipeline.
//
// Basic usage:
//
//	sel, err := streamql.Parse("select user_id, sum(amount) from events where amount > 0 group by user_id window fixed(1m)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plan, err := streamql.Plan(sel, schema)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err := streamql.NewDataStream(ctx, cfg, plan, source, loadFn, saveFn, nil)
package streamql

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/streamql/streamql/planner"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/format"
	"github.com/streamql/streamql/sql/parser"
	"github.com/streamql/streamql/stream"
	"github.com/streamql/streamql/stream/checkpoint"
	"github.com/streamql/streamql/types"
)

// Parse parses a single `select ...` query.
func Parse(sql string) (*ast.Select, error) {
	return parser.Parse(sql)
}

// Format renders sel back to canonical SQL text.
func Format(sel *ast.Select) string {
	return format.String(sel)
}

// Plan binds sel against inputSchema, producing a type-checked physical
// plan ready to drive a DataStream.
func Plan(sel *ast.Select, inputSchema *types.Schema) (*planner.Plan, error) {
	return planner.Plan(sel, inputSchema)
}

// Config is the engine's YAML-deserializable pipeline configuration.
type Config = stream.Config

// NewDataStream assembles plan's operators around src and starts running
// them; see stream.NewDataStream.
func NewDataStream(ctx context.Context, cfg Config, plan *planner.Plan, src stream.SourceOperator, loadFn checkpoint.LoadStateFunc, saveFn checkpoint.SaveStateFunc, log *logrus.Entry) (*stream.DataStream, error) {
	return stream.NewDataStream(ctx, cfg, plan, src, loadFn, saveFn, log)
}
