package parser

import (
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/token"
)

// parseSelect parses the top-level `select ...` production.
func (p *Parser) parseSelect() *ast.Select {
	defer p.enter("select")()
	pos := p.cur.Pos

	p.expect(token.SELECT)
	projection := p.parseProjection()
	p.expect(token.FROM)
	source := p.parseSource()

	sel := &ast.Select{
		StartPos:   pos,
		Projection: projection,
		Source:     source,
	}

	if p.curIs(token.WHERE) {
		p.advance()
		sel.Where = p.parseExpr()
	}
	if p.curIs(token.GROUP) {
		p.advance()
		p.expect(token.BY)
		sel.GroupBy = p.parseGroupBy()
	}
	if p.curIs(token.HAVING) {
		p.advance()
		sel.Having = p.parseExpr()
	}
	if p.curIs(token.WINDOW) {
		p.advance()
		sel.Window = p.parseWindow()
	}
	return sel
}

// parseProjection parses `(expr ("as" name)?) ,+`.
func (p *Parser) parseProjection() []ast.Expr {
	defer p.enter("proj")()
	var projs []ast.Expr
	projs = append(projs, p.parseProjectionItem())
	for p.curIs(token.COMMA) {
		p.advance()
		projs = append(projs, p.parseProjectionItem())
	}
	return projs
}

func (p *Parser) parseProjectionItem() ast.Expr {
	pos := p.cur.Pos
	e := p.parseExpr()
	if p.curIs(token.AS) {
		p.advance()
		name := p.parseName()
		return &ast.Alias{StartPos: pos, Expr: e, Name: name}
	}
	return e
}

// parseSource parses `source_from ("as" name)?`.
func (p *Parser) parseSource() *ast.Source {
	defer p.enter("source")()
	from := p.parseSourceFrom()
	src := &ast.Source{From: from}
	if p.curIs(token.AS) {
		p.advance()
		name := p.parseName()
		src.Alias = &name
	}
	return src
}

// parseSourceFrom parses `"(" select ")" | name`.
func (p *Parser) parseSourceFrom() ast.SourceFrom {
	defer p.enter("source_from")()
	if p.curIs(token.LPAREN) {
		pos := p.cur.Pos
		p.advance()
		sel := p.parseSelect()
		p.expect(token.RPAREN)
		return &ast.SubQuerySource{StartPos: pos, Select: sel}
	}
	pos := p.cur.Pos
	name := p.parseName()
	return &ast.NamedSource{StartPos: pos, Name: name}
}

// parseGroupBy parses `expr ,+`.
func (p *Parser) parseGroupBy() *ast.GroupBy {
	defer p.enter("group_by")()
	pos := p.cur.Pos
	g := &ast.GroupBy{StartPos: pos}
	g.Exprs = append(g.Exprs, p.parseExpr())
	for p.curIs(token.COMMA) {
		p.advance()
		g.Exprs = append(g.Exprs, p.parseExpr())
	}
	return g
}

// parseWindow parses the `window` production.
func (p *Parser) parseWindow() *ast.WindowSpec {
	defer p.enter("window")()
	pos := p.cur.Pos

	switch p.cur.Type {
	case token.FIXED:
		p.advance()
		p.expect(token.LPAREN)
		length := p.parseDuration()
		p.expect(token.RPAREN)
		return &ast.WindowSpec{StartPos: pos, Kind: ast.WindowFixed, LengthMs: length}
	case token.SLIDING:
		p.advance()
		p.expect(token.LPAREN)
		length := p.parseDuration()
		p.expect(token.COMMA)
		interval := p.parseDuration()
		p.expect(token.RPAREN)
		return &ast.WindowSpec{StartPos: pos, Kind: ast.WindowSliding, LengthMs: length, IntervalMs: interval}
	case token.DAY:
		p.advance()
		return &ast.WindowSpec{StartPos: pos, Kind: ast.WindowPeriod, Period: ast.PeriodDay}
	case token.WEEK:
		p.advance()
		return &ast.WindowSpec{StartPos: pos, Kind: ast.WindowPeriod, Period: ast.PeriodWeek}
	case token.MONTH:
		p.advance()
		return &ast.WindowSpec{StartPos: pos, Kind: ast.WindowPeriod, Period: ast.PeriodMonth}
	case token.YEAR:
		p.advance()
		return &ast.WindowSpec{StartPos: pos, Kind: ast.WindowPeriod, Period: ast.PeriodYear}
	default:
		p.fail("window", "expected fixed, sliding, day, week, month or year, got %s", p.cur.Type)
		return &ast.WindowSpec{StartPos: pos}
	}
}

// parseDuration parses `int ("ms" | "s" | "m")`, normalizing to
// milliseconds (ms identity, s*1000, m*60000).
func (p *Parser) parseDuration() int64 {
	defer p.enter("dur")()
	if !p.curIs(token.INT) {
		p.fail("dur", "expected integer duration, got %s %q", p.cur.Type, p.cur.Value)
		return 0
	}
	lit := p.parseLiteral()
	n := lit.Int

	if !p.curIs(token.IDENT) {
		p.fail("dur", "expected duration unit (ms, s or m), got %s", p.cur.Type)
		return n
	}
	unit := p.cur.Value
	switch unit {
	case "ms":
		p.advance()
		return n
	case "s":
		p.advance()
		return n * 1000
	case "m":
		p.advance()
		return n * 60000
	default:
		p.fail("dur", "unknown duration unit %q", unit)
		return n
	}
}
