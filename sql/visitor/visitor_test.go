package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/parser"
)

func TestInspectVisitsEveryColumnReference(t *testing.T) {
	sel, err := parser.Parse("select user_id, amount + 1 from orders where amount > 0 and user_id = 'a'")
	require.NoError(t, err)

	var cols []string
	Inspect(sel, func(n ast.Node) bool {
		if c, ok := n.(*ast.Column); ok {
			cols = append(cols, c.Name)
		}
		return true
	})

	assert.Equal(t, []string{"user_id", "amount", "amount", "user_id"}, cols)
}

func TestInspectFalseSkipsChildren(t *testing.T) {
	sel, err := parser.Parse("select amount + 1 from orders")
	require.NoError(t, err)

	var visited []string
	Inspect(sel, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.Binary:
			visited = append(visited, "binary")
			return false
		case *ast.Column:
			visited = append(visited, "column:"+v.Name)
		}
		return true
	})

	assert.Equal(t, []string{"binary"}, visited, "returning false must prevent descent into the binary's operands")
}

func TestWalkVisitsGroupByAndWindow(t *testing.T) {
	sel, err := parser.Parse("select user_id, sum(amount) from orders group by user_id window fixed(1m)")
	require.NoError(t, err)

	var sawGroupBy, sawWindow, sawCall bool
	Walk(visitFn(func(n ast.Node) bool {
		switch n.(type) {
		case *ast.GroupBy:
			sawGroupBy = true
		case *ast.WindowSpec:
			sawWindow = true
		case *ast.Call:
			sawCall = true
		}
		return true
	}), sel)

	assert.True(t, sawGroupBy)
	assert.True(t, sawWindow)
	assert.True(t, sawCall)
}

func TestWalkOnNilNodeIsNoop(t *testing.T) {
	called := false
	Walk(visitFn(func(n ast.Node) bool {
		called = true
		return true
	}), nil)
	assert.False(t, called)
}

// visitFn adapts a plain predicate function to the Visitor interface for
// tests that want Walk's raw traversal rather than Inspect's convenience.
type visitFn func(ast.Node) bool

func (f visitFn) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}
