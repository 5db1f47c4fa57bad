// Package visitor provides AST traversal utilities.
package visitor

import "github.com/streamql/streamql/sql/ast"

// Visitor is the interface for AST traversal. Visit is called with each
// node before its children; if it returns nil, the children are not
// visited.
type Visitor interface {
	Visit(node ast.Node) Visitor
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node ast.Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	walkChildren(v, node)
}

func walkChildren(v Visitor, node ast.Node) {
	switch n := node.(type) {
	case *ast.Select:
		for _, p := range n.Projection {
			Walk(v, p)
		}
		if n.Source != nil {
			Walk(v, n.Source)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.GroupBy != nil {
			Walk(v, n.GroupBy)
		}
		if n.Having != nil {
			Walk(v, n.Having)
		}
		if n.Window != nil {
			Walk(v, n.Window)
		}

	case *ast.Source:
		Walk(v, n.From)

	case *ast.SubQuerySource:
		Walk(v, n.Select)

	case *ast.GroupBy:
		for _, e := range n.Exprs {
			Walk(v, e)
		}

	case *ast.Unary:
		Walk(v, n.Expr)

	case *ast.Binary:
		Walk(v, n.Lhs)
		Walk(v, n.Rhs)

	case *ast.Call:
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *ast.Alias:
		Walk(v, n.Expr)

	// *ast.NamedSource, *ast.Column, *ast.Wildcard, *ast.Literal and
	// *ast.WindowSpec are leaves.
	case *ast.NamedSource, *ast.Column, *ast.Wildcard, *ast.Literal, *ast.WindowSpec:
	}
}

// Inspect calls f for every node of the AST in depth-first order. If f
// returns false for a node, Inspect skips over that node's children.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(ast.Node) bool

func (f inspector) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}
