// Package expr implements PhysicalExpr: a bound, type-checked expression
// tree evaluated against a dataset.DataSet, with save/load state for
// aggregate calls (the only PhysicalExpr variant that carries state).
package expr

import (
	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/expr/function"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/types"
)

// PhysicalExpr is a bound, type-checked expression plus an internal,
// per-call state cell (non-empty only for aggregate calls).
type PhysicalExpr interface {
	DataType() types.DataType
	Eval(ds *dataset.DataSet) (types.Array, error)
	SaveState() ([]byte, error)
	LoadState(data []byte) error
	// Clone returns a copy for a new group: column and literal expressions
	// are immutable and return themselves, composite expressions clone
	// their operands, and aggregate calls return a copy whose accumulator
	// is an independent clone carrying the same accumulated state.
	Clone() PhysicalExpr
}

// ColumnExpr reads a resolved column straight out of the dataset.
type ColumnExpr struct {
	Idx int
	Typ types.DataType
}

func (e *ColumnExpr) DataType() types.DataType { return e.Typ }
func (e *ColumnExpr) Eval(ds *dataset.DataSet) (types.Array, error) {
	return ds.Column(e.Idx), nil
}
func (e *ColumnExpr) SaveState() ([]byte, error) { return nil, nil }
func (e *ColumnExpr) LoadState(data []byte) error { return nil }
func (e *ColumnExpr) Clone() PhysicalExpr         { return e }

// LiteralExpr evaluates to the same scalar for every row.
type LiteralExpr struct {
	Value types.Scalar
}

func (e *LiteralExpr) DataType() types.DataType { return types.DataType{Kind: e.Value.Kind} }
func (e *LiteralExpr) Eval(ds *dataset.DataSet) (types.Array, error) {
	n := ds.NumRows()
	b := types.NewBuilder(e.DataType())
	for i := 0; i < n; i++ {
		appendScalar(b, e.Value)
	}
	return finishBuilder(b), nil
}
func (e *LiteralExpr) SaveState() ([]byte, error)  { return nil, nil }
func (e *LiteralExpr) LoadState(data []byte) error { return nil }
func (e *LiteralExpr) Clone() PhysicalExpr          { return e }

// UnaryExpr applies NOT or unary minus row-wise.
type UnaryExpr struct {
	Op      ast.UnaryOp
	Operand PhysicalExpr
	Typ     types.DataType
}

func (e *UnaryExpr) DataType() types.DataType { return e.Typ }

func (e *UnaryExpr) Eval(ds *dataset.DataSet) (types.Array, error) {
	arr, err := e.Operand.Eval(ds)
	if err != nil {
		return nil, err
	}
	b := types.NewBuilder(e.Typ)
	for i := 0; i < arr.Len(); i++ {
		v := arr.ScalarValue(i)
		if v.Null {
			appendScalar(b, types.NullScalar(e.Typ.Kind))
			continue
		}
		out, err := evalUnary(e.Op, v)
		if err != nil {
			return nil, err
		}
		appendScalar(b, out)
	}
	return finishBuilder(b), nil
}

func (e *UnaryExpr) SaveState() ([]byte, error)  { return e.Operand.SaveState() }
func (e *UnaryExpr) LoadState(data []byte) error { return e.Operand.LoadState(data) }
func (e *UnaryExpr) Clone() PhysicalExpr {
	return &UnaryExpr{Op: e.Op, Operand: e.Operand.Clone(), Typ: e.Typ}
}

func evalUnary(op ast.UnaryOp, v types.Scalar) (types.Scalar, error) {
	switch op {
	case ast.Not:
		return types.BooleanScalar(!v.Boolean), nil
	case ast.Neg:
		switch v.Kind {
		case types.Int8, types.Int16, types.Int32, types.Int64:
			return types.IntScalar(v.Kind, -v.Int), nil
		default:
			return types.FloatScalar(v.Kind, -v.Float), nil
		}
	default:
		return types.Scalar{}, errkind.EvalError.New("unknown unary operator")
	}
}

// BinaryExpr applies a binary operator row-wise.
type BinaryExpr struct {
	Op       ast.BinaryOp
	Lhs, Rhs PhysicalExpr
	Typ      types.DataType
}

func (e *BinaryExpr) DataType() types.DataType { return e.Typ }

func (e *BinaryExpr) Eval(ds *dataset.DataSet) (types.Array, error) {
	lhs, err := e.Lhs.Eval(ds)
	if err != nil {
		return nil, err
	}
	rhs, err := e.Rhs.Eval(ds)
	if err != nil {
		return nil, err
	}
	b := types.NewBuilder(e.Typ)
	for i := 0; i < lhs.Len(); i++ {
		lv, rv := lhs.ScalarValue(i), rhs.ScalarValue(i)
		if lv.Null || rv.Null {
			appendScalar(b, types.NullScalar(e.Typ.Kind))
			continue
		}
		out, err := evalBinary(e.Op, lv, rv)
		if err != nil {
			return nil, err
		}
		appendScalar(b, out)
	}
	return finishBuilder(b), nil
}

func (e *BinaryExpr) SaveState() ([]byte, error) {
	l, err := e.Lhs.SaveState()
	if err != nil {
		return nil, err
	}
	if len(l) > 0 {
		return l, nil
	}
	return e.Rhs.SaveState()
}

func (e *BinaryExpr) LoadState(data []byte) error {
	if err := e.Lhs.LoadState(data); err != nil {
		return err
	}
	return e.Rhs.LoadState(data)
}

func (e *BinaryExpr) Clone() PhysicalExpr {
	return &BinaryExpr{Op: e.Op, Lhs: e.Lhs.Clone(), Rhs: e.Rhs.Clone(), Typ: e.Typ}
}

func isNumeric(k types.Kind) bool {
	switch k {
	case types.Int8, types.Int16, types.Int32, types.Int64, types.Float32, types.Float64:
		return true
	default:
		return false
	}
}

func numOf(s types.Scalar) float64 {
	if s.Kind == types.Float32 || s.Kind == types.Float64 {
		return s.Float
	}
	return float64(s.Int)
}

func evalBinary(op ast.BinaryOp, l, r types.Scalar) (types.Scalar, error) {
	switch op {
	case ast.Or:
		return types.BooleanScalar(l.Boolean || r.Boolean), nil
	case ast.And:
		return types.BooleanScalar(l.Boolean && r.Boolean), nil
	case ast.Eq:
		return types.BooleanScalar(l.Equal(r)), nil
	case ast.NotEq:
		return types.BooleanScalar(!l.Equal(r)), nil
	case ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
		return evalComparison(op, l, r)
	case ast.Plus, ast.Minus, ast.Multiply, ast.Divide:
		return evalArithmetic(op, l, r)
	default:
		return types.Scalar{}, errkind.EvalError.New("unknown binary operator")
	}
}

func evalComparison(op ast.BinaryOp, l, r types.Scalar) (types.Scalar, error) {
	var cmp int
	if l.Kind == types.String {
		switch {
		case l.Str < r.Str:
			cmp = -1
		case l.Str > r.Str:
			cmp = 1
		}
	} else if isNumeric(l.Kind) {
		lv, rv := numOf(l), numOf(r)
		switch {
		case lv < rv:
			cmp = -1
		case lv > rv:
			cmp = 1
		}
	} else {
		return types.Scalar{}, errkind.EvalError.New("comparison requires a numeric or string operand")
	}
	switch op {
	case ast.Lt:
		return types.BooleanScalar(cmp < 0), nil
	case ast.LtEq:
		return types.BooleanScalar(cmp <= 0), nil
	case ast.Gt:
		return types.BooleanScalar(cmp > 0), nil
	case ast.GtEq:
		return types.BooleanScalar(cmp >= 0), nil
	default:
		return types.Scalar{}, errkind.EvalError.New("unknown comparison operator")
	}
}

func evalArithmetic(op ast.BinaryOp, l, r types.Scalar) (types.Scalar, error) {
	if !isNumeric(l.Kind) || !isNumeric(r.Kind) {
		return types.Scalar{}, errkind.EvalError.New("arithmetic requires numeric operands")
	}
	if l.Kind == types.Float32 || l.Kind == types.Float64 || r.Kind == types.Float32 || r.Kind == types.Float64 {
		lv, rv := numOf(l), numOf(r)
		var out float64
		switch op {
		case ast.Plus:
			out = lv + rv
		case ast.Minus:
			out = lv - rv
		case ast.Multiply:
			out = lv * rv
		case ast.Divide:
			if rv == 0 {
				return types.Scalar{}, errkind.EvalError.New("division by zero")
			}
			out = lv / rv
		}
		kind := l.Kind
		if kind != types.Float32 && kind != types.Float64 {
			kind = r.Kind
		}
		return types.FloatScalar(kind, out), nil
	}
	lv, rv := l.Int, r.Int
	var out int64
	switch op {
	case ast.Plus:
		out = lv + rv
	case ast.Minus:
		out = lv - rv
	case ast.Multiply:
		out = lv * rv
	case ast.Divide:
		if rv == 0 {
			return types.Scalar{}, errkind.EvalError.New("division by zero")
		}
		out = lv / rv
	}
	return types.IntScalar(l.Kind, out), nil
}

// ScalarCallExpr evaluates a registered scalar function row-wise.
type ScalarCallExpr struct {
	Fn   function.ScalarFunc
	Args []PhysicalExpr
	Typ  types.DataType
}

func (e *ScalarCallExpr) DataType() types.DataType { return e.Typ }

func (e *ScalarCallExpr) Eval(ds *dataset.DataSet) (types.Array, error) {
	argArrays := make([]types.Array, len(e.Args))
	for i, a := range e.Args {
		arr, err := a.Eval(ds)
		if err != nil {
			return nil, err
		}
		argArrays[i] = arr
	}
	n := ds.NumRows()
	b := types.NewBuilder(e.Typ)
	row := make([]types.Scalar, len(argArrays))
	for i := 0; i < n; i++ {
		for j, arr := range argArrays {
			row[j] = arr.ScalarValue(i)
		}
		out, err := e.Fn(row)
		if err != nil {
			return nil, errkind.EvalError.New(err.Error())
		}
		appendScalar(b, out)
	}
	return finishBuilder(b), nil
}

func (e *ScalarCallExpr) SaveState() ([]byte, error)  { return nil, nil }
func (e *ScalarCallExpr) LoadState(data []byte) error { return nil }
func (e *ScalarCallExpr) Clone() PhysicalExpr {
	args := make([]PhysicalExpr, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Clone()
	}
	return &ScalarCallExpr{Fn: e.Fn, Args: args, Typ: e.Typ}
}

// AggregateCallExpr folds every row of each Eval call into its
// Accumulator, which persists across calls: the AggregateManager calls
// Eval once per incoming batch assigned to this expression's group, and
// reads back the running Result via Eval's single-row output.
type AggregateCallExpr struct {
	Acc function.Accumulator
	Arg PhysicalExpr
	Typ types.DataType
}

func (e *AggregateCallExpr) DataType() types.DataType { return e.Typ }

func (e *AggregateCallExpr) Eval(ds *dataset.DataSet) (types.Array, error) {
	arr, err := e.Arg.Eval(ds)
	if err != nil {
		return nil, err
	}
	for i := 0; i < arr.Len(); i++ {
		if err := e.Acc.Accumulate(arr.ScalarValue(i)); err != nil {
			return nil, errkind.EvalError.New(err.Error())
		}
	}
	b := types.NewBuilder(e.Typ)
	appendScalar(b, e.Acc.Result())
	return finishBuilder(b), nil
}

func (e *AggregateCallExpr) SaveState() ([]byte, error)  { return e.Acc.SaveState() }
func (e *AggregateCallExpr) LoadState(data []byte) error { return e.Acc.LoadState(data) }
func (e *AggregateCallExpr) Clone() PhysicalExpr {
	return &AggregateCallExpr{Acc: e.Acc.Clone(), Arg: e.Arg.Clone(), Typ: e.Typ}
}
