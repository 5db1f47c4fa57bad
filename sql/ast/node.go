// Package ast defines the parse tree produced by sql/parser: a single
// SELECT query over expressions, an optional WHERE/GROUP BY/HAVING, and an
// optional WINDOW clause.
package ast

import "github.com/streamql/streamql/sql/token"

// Node is the base interface implemented by every parse tree node.
type Node interface {
	Pos() token.Pos
}

// Expr is a scalar or aggregate expression.
type Expr interface {
	Node
	exprNode()
}
