package planner

import (
	"fmt"

	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/expr/function"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/format"
	"github.com/streamql/streamql/types"
)

// binder resolves an ast.Expr against a scope, producing a PhysicalExpr,
// raising NameError/TypeError/UngroupedColumn per the resolution rules.
type binder struct {
	sc         scope
	groupCanon map[string]bool // canonical text of each verbatim GROUP BY expr
}

func newBinder(sc scope, groupBy *ast.GroupBy) *binder {
	b := &binder{sc: sc}
	if groupBy != nil {
		b.groupCanon = make(map[string]bool, len(groupBy.Exprs))
		for _, e := range groupBy.Exprs {
			b.groupCanon[format.Expr(e)] = true
		}
	}
	return b
}

// bindProjection binds a top-level projection expression in an aggregating
// query: if its canonical text matches a GROUP BY expression verbatim it is
// bound as a plain (ungrouped-column-free) expression; otherwise every bare
// Column it contains must be inside an aggregate call.
func (b *binder) bindProjection(e ast.Expr) (expr.PhysicalExpr, error) {
	if b.groupCanon[format.Expr(e)] {
		return b.bind(e, false, true)
	}
	return b.bind(e, false, false)
}

// bindPlain binds e with no grouping constraints (WHERE clauses, and
// non-aggregating queries).
func (b *binder) bindPlain(e ast.Expr) (expr.PhysicalExpr, error) {
	return b.bind(e, false, true)
}

func (b *binder) bind(e ast.Expr, inAggregate, groupMatch bool) (expr.PhysicalExpr, error) {
	switch n := e.(type) {
	case *ast.Column:
		if !inAggregate && !groupMatch {
			return nil, errkind.UngroupedColumn.New(qualifiedName(n.Qualifier, n.Name))
		}
		idx, dt, err := b.sc.resolve(n.Qualifier, n.Name)
		if err != nil {
			return nil, err
		}
		return &expr.ColumnExpr{Idx: idx, Typ: dt}, nil

	case *ast.Wildcard:
		return nil, errkind.TypeError.New("* is only valid as a whole projection item")

	case *ast.Literal:
		return bindLiteral(n), nil

	case *ast.Unary:
		operand, err := b.bind(n.Expr, inAggregate, groupMatch)
		if err != nil {
			return nil, err
		}
		dt := operand.DataType()
		if n.Op == ast.Not {
			dt = types.BooleanType
		}
		return &expr.UnaryExpr{Op: n.Op, Operand: operand, Typ: dt}, nil

	case *ast.Binary:
		lhs, err := b.bind(n.Lhs, inAggregate, groupMatch)
		if err != nil {
			return nil, err
		}
		rhs, err := b.bind(n.Rhs, inAggregate, groupMatch)
		if err != nil {
			return nil, err
		}
		dt, err := binaryResultType(n.Op, lhs.DataType(), rhs.DataType())
		if err != nil {
			return nil, err
		}
		return &expr.BinaryExpr{Op: n.Op, Lhs: lhs, Rhs: rhs, Typ: dt}, nil

	case *ast.Call:
		return b.bindCall(n, inAggregate, groupMatch)

	case *ast.Alias:
		return b.bind(n.Expr, inAggregate, groupMatch)

	default:
		return nil, errkind.TypeError.New(fmt.Sprintf("unsupported expression %T", e))
	}
}

func (b *binder) bindCall(n *ast.Call, inAggregate, groupMatch bool) (expr.PhysicalExpr, error) {
	if function.IsAggregate(n.Name) {
		if inAggregate {
			return nil, errkind.TypeError.New("aggregate calls cannot nest: " + n.Name)
		}
		// A call whose canonical text names a column of the scope resolves
		// to that column: HAVING is bound against the projection's output
		// schema, where an unaliased aggregate projection carries that name.
		if idx := b.sc.schema.IndexOf(format.Expr(n)); idx >= 0 {
			return &expr.ColumnExpr{Idx: idx, Typ: b.sc.schema.Field(idx).DataType}, nil
		}
		if len(n.Args) != 1 {
			return nil, errkind.TypeError.New(n.Name + "() takes exactly one argument")
		}
		arg, err := b.bind(n.Args[0], true, groupMatch)
		if err != nil {
			return nil, err
		}
		af, _ := function.LookupAggregate(n.Name)
		retType, err := af.Signature.ReturnFor([]types.DataType{arg.DataType()})
		if err != nil {
			return nil, errkind.TypeError.New(err.Error())
		}
		return &expr.AggregateCallExpr{
			Acc: af.NewAccumulator(arg.DataType()),
			Arg: arg,
			Typ: retType,
		}, nil
	}

	sig, fn, ok := function.LookupScalar(n.Name)
	if !ok {
		return nil, errkind.NameError.New("unknown function " + n.Name)
	}
	if !sig.Variadic && len(n.Args) != len(sig.Args) {
		return nil, errkind.TypeError.New(fmt.Sprintf("%s() takes %d argument(s), got %d", n.Name, len(sig.Args), len(n.Args)))
	}
	if sig.Variadic && len(n.Args) < len(sig.Args) {
		return nil, errkind.TypeError.New(fmt.Sprintf("%s() takes at least %d argument(s), got %d", n.Name, len(sig.Args), len(n.Args)))
	}
	args := make([]expr.PhysicalExpr, len(n.Args))
	argTypes := make([]types.DataType, len(n.Args))
	for i, a := range n.Args {
		bound, err := b.bind(a, inAggregate, groupMatch)
		if err != nil {
			return nil, err
		}
		args[i] = bound
		argTypes[i] = bound.DataType()
	}
	retType, err := sig.ReturnFor(argTypes)
	if err != nil {
		return nil, errkind.TypeError.New(err.Error())
	}
	return &expr.ScalarCallExpr{Fn: fn, Args: args, Typ: retType}, nil
}

func bindLiteral(n *ast.Literal) expr.PhysicalExpr {
	switch n.Kind {
	case ast.LiteralBool:
		return &expr.LiteralExpr{Value: types.BooleanScalar(n.Bool)}
	case ast.LiteralInt:
		return &expr.LiteralExpr{Value: types.IntScalar(types.Int64, n.Int)}
	case ast.LiteralFloat:
		return &expr.LiteralExpr{Value: types.FloatScalar(types.Float64, n.Float)}
	default:
		return &expr.LiteralExpr{Value: types.StringScalar(n.String)}
	}
}

func binaryResultType(op ast.BinaryOp, lhs, rhs types.DataType) (types.DataType, error) {
	switch op {
	case ast.Or, ast.And, ast.Eq, ast.NotEq, ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
		return types.BooleanType, nil
	case ast.Plus, ast.Minus, ast.Multiply, ast.Divide:
		if lhs.Kind == types.Float32 || lhs.Kind == types.Float64 {
			return lhs, nil
		}
		if rhs.Kind == types.Float32 || rhs.Kind == types.Float64 {
			return rhs, nil
		}
		return lhs, nil
	default:
		return types.DataType{}, errkind.TypeError.New("unknown binary operator")
	}
}
