// Package planner binds a parsed ast.Select against an input schema,
// producing a Plan: a bound WHERE/GROUP BY/HAVING/WINDOW expression tree
// ready for stream evaluation.
package planner

import (
	"fmt"
	"strings"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/expr/function"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/format"
	"github.com/streamql/streamql/sql/visitor"
	"github.com/streamql/streamql/types"
)

// ProjectionField is one bound, named output column.
type ProjectionField struct {
	Name string
	Expr expr.PhysicalExpr
}

// Plan is the bound, type-checked form of one `select ...` query: every
// ast.Expr has been resolved against a schema into a PhysicalExpr tree.
type Plan struct {
	InputSchema *types.Schema
	Output      *types.Schema
	Fields      []ProjectionField
	Where       expr.PhysicalExpr
	GroupBy     []expr.PhysicalExpr
	Having      expr.PhysicalExpr
	Window      *dataset.Window
	Aggregating bool
}

// Plan binds sel against inputSchema (the schema of the named source, or
// of the resolved sub-query when sel.Source wraps one).
func Plan(sel *ast.Select, inputSchema *types.Schema) (*Plan, error) {
	resolvedSchema := inputSchema
	alias := ""

	if sel.Source != nil {
		if sel.Source.Alias != nil {
			alias = *sel.Source.Alias
		}
		if sub, ok := sel.Source.From.(*ast.SubQuerySource); ok {
			inner, err := Plan(sub.Select, inputSchema)
			if err != nil {
				return nil, err
			}
			resolvedSchema = inner.Output
		}
	}

	sc := scope{schema: resolvedSchema, alias: alias}

	p := &Plan{InputSchema: resolvedSchema}

	if sel.Where != nil {
		b := newBinder(sc, nil)
		whereExpr, err := b.bindPlain(sel.Where)
		if err != nil {
			return nil, err
		}
		if whereExpr.DataType().Kind != types.Boolean {
			return nil, errkind.TypeError.New("WHERE must be a boolean expression")
		}
		p.Where = whereExpr
	}

	p.Aggregating = sel.GroupBy != nil || hasAggregateCall(sel.Projection) || (sel.Having != nil && hasAggregateCall([]ast.Expr{sel.Having}))

	b := newBinder(sc, sel.GroupBy)

	if sel.GroupBy != nil {
		p.GroupBy = make([]expr.PhysicalExpr, len(sel.GroupBy.Exprs))
		for i, e := range sel.GroupBy.Exprs {
			bound, err := b.bindPlain(e)
			if err != nil {
				return nil, err
			}
			p.GroupBy[i] = bound
		}
	}

	fields, err := bindProjection(b, sel.Projection, sc, p.Aggregating)
	if err != nil {
		return nil, err
	}
	p.Fields = fields

	outFields := make([]types.Field, len(fields))
	for i, f := range fields {
		outFields[i] = types.NewField(f.Name, f.Expr.DataType())
	}
	outSchema, err := types.NewSchema(outFields)
	if err != nil {
		return nil, err
	}
	p.Output = outSchema

	if sel.Having != nil {
		havingScope := scope{schema: outSchema}
		hb := newBinder(havingScope, nil)
		havingExpr, err := hb.bindPlain(sel.Having)
		if err != nil {
			return nil, err
		}
		if havingExpr.DataType().Kind != types.Boolean {
			return nil, errkind.TypeError.New("HAVING must be a boolean expression")
		}
		p.Having = havingExpr
	}

	if sel.Window != nil {
		w, err := bindWindow(sel.Window)
		if err != nil {
			return nil, err
		}
		p.Window = &w
	} else if p.Aggregating {
		return nil, errkind.TypeError.New("aggregating query requires a WINDOW clause")
	}

	return p, nil
}

// bindProjection expands `*`/`qualifier.*` wildcards against sc and binds
// every other projection item, naming each field by its explicit alias, its
// bare column name, or its canonical formatted text.
func bindProjection(b *binder, projection []ast.Expr, sc scope, aggregating bool) ([]ProjectionField, error) {
	var fields []ProjectionField
	for _, item := range projection {
		name := ""
		e := item
		if alias, ok := item.(*ast.Alias); ok {
			name = alias.Name
			e = alias.Expr
		}

		if wc, ok := e.(*ast.Wildcard); ok {
			if aggregating {
				return nil, errkind.TypeError.New("* is not valid in an aggregating query")
			}
			if wc.Qualifier != nil && sc.alias != "" && !strings.EqualFold(*wc.Qualifier, sc.alias) {
				return nil, errkind.NameError.New(*wc.Qualifier + ".*")
			}
			for i := 0; i < sc.schema.Len(); i++ {
				f := sc.schema.Field(i)
				fields = append(fields, ProjectionField{
					Name: f.Name,
					Expr: &expr.ColumnExpr{Idx: i, Typ: f.DataType},
				})
			}
			continue
		}

		var bound expr.PhysicalExpr
		var err error
		if aggregating {
			bound, err = b.bindProjection(e)
		} else {
			bound, err = b.bindPlain(e)
		}
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = projectionName(e)
		}
		fields = append(fields, ProjectionField{Name: name, Expr: bound})
	}
	return fields, nil
}

func projectionName(e ast.Expr) string {
	if col, ok := e.(*ast.Column); ok {
		return col.Name
	}
	return format.Expr(e)
}

func hasAggregateCall(exprs []ast.Expr) bool {
	found := false
	for _, e := range exprs {
		visitor.Inspect(e, func(n ast.Node) bool {
			if found {
				return false
			}
			if call, ok := n.(*ast.Call); ok && function.IsAggregate(call.Name) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

func bindWindow(w *ast.WindowSpec) (dataset.Window, error) {
	switch w.Kind {
	case ast.WindowFixed:
		return dataset.NewFixed(w.LengthMs)
	case ast.WindowSliding:
		return dataset.NewSliding(w.LengthMs, w.IntervalMs)
	case ast.WindowPeriod:
		return dataset.NewPeriod(dataset.Period(w.Period)), nil
	default:
		return dataset.Window{}, fmt.Errorf("planner: unknown window kind %v", w.Kind)
	}
}
