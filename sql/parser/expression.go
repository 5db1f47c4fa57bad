package parser

import (
	"strconv"

	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/token"
)

// parseExpr parses a full expression: OR is the lowest-precedence
// production, AND next, then comparison, then +/-, then * and /, with the
// unary prefix operators NOT and - binding tightest (parentheses always
// override).
func (p *Parser) parseExpr() ast.Expr {
	defer p.enter("expr")()
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	lhs := p.parseAnd()
	for p.curIs(token.OR) {
		pos := p.cur.Pos
		p.advance()
		rhs := p.parseAnd()
		lhs = &ast.Binary{StartPos: pos, Op: ast.Or, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseAnd() ast.Expr {
	lhs := p.parseComparison()
	for p.curIs(token.AND) {
		pos := p.cur.Pos
		p.advance()
		rhs := p.parseComparison()
		lhs = &ast.Binary{StartPos: pos, Op: ast.And, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func comparisonOp(t token.Token) (ast.BinaryOp, bool) {
	switch t {
	case token.EQ:
		return ast.Eq, true
	case token.NEQ:
		return ast.NotEq, true
	case token.LTE:
		return ast.LtEq, true
	case token.LT:
		return ast.Lt, true
	case token.GTE:
		return ast.GtEq, true
	case token.GT:
		return ast.Gt, true
	default:
		return 0, false
	}
}

func (p *Parser) parseComparison() ast.Expr {
	lhs := p.parseAdditive()
	for {
		op, ok := comparisonOp(p.cur.Type)
		if !ok {
			return lhs
		}
		pos := p.cur.Pos
		p.advance()
		rhs := p.parseAdditive()
		lhs = &ast.Binary{StartPos: pos, Op: op, Lhs: lhs, Rhs: rhs}
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	lhs := p.parseMultiplicative()
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := ast.Plus
		if p.cur.Type == token.MINUS {
			op = ast.Minus
		}
		pos := p.cur.Pos
		p.advance()
		rhs := p.parseMultiplicative()
		lhs = &ast.Binary{StartPos: pos, Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseMultiplicative() ast.Expr {
	lhs := p.parseUnary()
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) {
		op := ast.Multiply
		if p.cur.Type == token.SLASH {
			op = ast.Divide
		}
		pos := p.cur.Pos
		p.advance()
		rhs := p.parseUnary()
		lhs = &ast.Binary{StartPos: pos, Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case token.NOT:
		pos := p.cur.Pos
		p.advance()
		return &ast.Unary{StartPos: pos, Op: ast.Not, Expr: p.parseUnary()}
	case token.MINUS:
		pos := p.cur.Pos
		p.advance()
		return &ast.Unary{StartPos: pos, Op: ast.Neg, Expr: p.parseUnary()}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	defer p.enter("expr_primitive")()

	if p.curIs(token.LPAREN) {
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return inner
	}

	switch p.cur.Type {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		return p.parseLiteral()
	case token.ASTERISK:
		pos := p.cur.Pos
		p.advance()
		return &ast.Wildcard{StartPos: pos}
	}

	if p.curIsNameStart() {
		return p.parseNameExpr()
	}

	p.fail("expr_primitive", "unexpected token %s %q", p.cur.Type, p.cur.Value)
	return &ast.Literal{StartPos: p.cur.Pos, Kind: ast.LiteralBool, Bool: false}
}

// curIsNameStart reports whether the current token can begin a name
// (identifier or quoted string used as a name).
func (p *Parser) curIsNameStart() bool {
	return p.curIs(token.IDENT) || p.curIs(token.STRING)
}

// parseName parses a `name := string | ident` production.
func (p *Parser) parseName() string {
	defer p.enter("name")()
	if p.curIs(token.STRING) || p.curIs(token.IDENT) {
		v := p.cur.Value
		p.advance()
		return v
	}
	p.fail("name", "expected identifier or string, got %s", p.cur.Type)
	return ""
}

func (p *Parser) parseLiteral() *ast.Literal {
	defer p.enter("literal")()
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.TRUE:
		p.advance()
		return &ast.Literal{StartPos: pos, Kind: ast.LiteralBool, Bool: true}
	case token.FALSE:
		p.advance()
		return &ast.Literal{StartPos: pos, Kind: ast.LiteralBool, Bool: false}
	case token.FLOAT:
		v, err := strconv.ParseFloat(p.cur.Value, 64)
		if err != nil {
			p.fail("literal", "invalid float %q: %v", p.cur.Value, err)
		}
		p.advance()
		return &ast.Literal{StartPos: pos, Kind: ast.LiteralFloat, Float: v}
	case token.INT:
		v, err := strconv.ParseInt(p.cur.Value, 10, 64)
		if err != nil {
			p.fail("literal", "invalid integer %q: %v", p.cur.Value, err)
		}
		p.advance()
		return &ast.Literal{StartPos: pos, Kind: ast.LiteralInt, Int: v}
	case token.STRING:
		v := p.cur.Value
		p.advance()
		return &ast.Literal{StartPos: pos, Kind: ast.LiteralString, String: v}
	default:
		p.fail("literal", "expected literal, got %s", p.cur.Type)
		return &ast.Literal{StartPos: pos}
	}
}

// parseNameExpr parses a column reference, a qualified wildcard
// (`qualifier.*`), or a function call (with optional namespace prefix),
// disambiguating on what follows the first name.
func (p *Parser) parseNameExpr() ast.Expr {
	defer p.enter("input")()
	pos := p.cur.Pos
	first := p.parseName()

	if p.curIs(token.LPAREN) {
		return p.parseCall(pos, nil, first)
	}

	if p.curIs(token.DOT) {
		p.advance()
		if p.curIs(token.ASTERISK) {
			p.advance()
			return &ast.Wildcard{StartPos: pos, Qualifier: &first}
		}
		second := p.parseName()
		if p.curIs(token.LPAREN) {
			return p.parseCall(pos, &first, second)
		}
		return &ast.Column{StartPos: pos, Qualifier: &first, Name: second}
	}

	return &ast.Column{StartPos: pos, Name: first}
}

func (p *Parser) parseCall(pos token.Pos, namespace *string, name string) *ast.Call {
	defer p.enter("expr_call")()
	p.expect(token.LPAREN)
	var args []ast.Expr
	if !p.curIs(token.RPAREN) {
		args = append(args, p.parseExpr())
		for p.curIs(token.COMMA) {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{StartPos: pos, Namespace: namespace, Name: name, Args: args}
}
