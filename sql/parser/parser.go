// Package parser implements a hand-written recursive-descent parser for the
// grammar:
//
//	select := "select" proj ("from" source) ("where" expr)?
//	          ("group by" expr,+)? ("having" expr)? ("window" window)?
//	proj   := (expr ("as" name)?) ,+
//	window := "fixed" "(" dur ")" | "sliding" "(" dur "," dur ")"
//	        | "day" | "week" | "month" | "year"
//	dur    := int ("ms" | "s" | "m")
package parser

import (
	"fmt"
	"sync"

	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/sql/ast"
	"github.com/streamql/streamql/sql/lexer"
	"github.com/streamql/streamql/sql/token"
)

// ParseError reports the furthest position the parser reached and the
// production it was attempting there, mirroring the furthest-failure
// diagnostics of a PEG/combinator parser (the original engine used nom's
// context() for this).
type ParseError struct {
	Offset  int
	Pos     token.Pos
	Context string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d (line %d, column %d) in %s: %s",
		e.Offset, e.Pos.Line, e.Pos.Column, e.Context, e.Message)
}

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	lexer *lexer.Lexer
	cur   token.Item

	prodStack []string
	furthest  token.Pos
	furthestP string
	furthestM string
	failed    bool
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// New creates a Parser over input.
func New(input string) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	p.advance()
	return p
}

// Get returns a pooled Parser reset to scan input. Call Put when done.
func Get(input string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input)
	p.prodStack = p.prodStack[:0]
	p.failed = false
	p.furthest = token.Pos{}
	p.advance()
	return p
}

// Put returns p (and its lexer) to the pool. p must not be used afterward.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// Parse parses a single `select ...` query and checks that it consumed the
// entire input.
func (p *Parser) Parse() (*ast.Select, error) {
	sel := p.parseSelect()
	if p.failed {
		return nil, p.err()
	}
	if !p.curIs(token.EOF) {
		p.fail("input", "unexpected trailing input after query")
		return nil, p.err()
	}
	return sel, nil
}

// Parse parses input as a single `select ...` query.
func Parse(input string) (*ast.Select, error) {
	p := Get(input)
	defer Put(p)
	return p.Parse()
}

func (p *Parser) err() error {
	pe := &ParseError{
		Offset:  p.furthest.Offset,
		Pos:     p.furthest,
		Context: p.furthestP,
		Message: p.furthestM,
	}
	return errkind.ParseError.Wrap(pe, pe.Offset, pe.Context, pe.Message)
}

// enter pushes a production label and returns a func to pop it; used as
// `defer p.enter("select")()`.
func (p *Parser) enter(label string) func() {
	p.prodStack = append(p.prodStack, label)
	return func() {
		p.prodStack = p.prodStack[:len(p.prodStack)-1]
	}
}

func (p *Parser) context() string {
	if len(p.prodStack) == 0 {
		return "input"
	}
	return p.prodStack[len(p.prodStack)-1]
}

// fail records a failure if it is at least as far into the input as any
// previously recorded failure: only the furthest-reached failure is ever
// surfaced to the caller.
func (p *Parser) fail(label, format string, args ...any) {
	p.failed = true
	if p.cur.Pos.Offset < p.furthest.Offset {
		return
	}
	p.furthest = p.cur.Pos
	p.furthestP = label
	p.furthestM = fmt.Sprintf(format, args...)
}

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur.Type == t
}

func (p *Parser) peek() token.Item {
	return p.lexer.Peek()
}

// expect consumes the current token if it matches t, else records a failure
// in the current production context.
func (p *Parser) expect(t token.Token) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.fail(p.context(), "expected %s, got %s %q", t, p.cur.Type, p.cur.Value)
	return false
}
