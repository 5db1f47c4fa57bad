// Package format renders a parsed query back to canonical SQL text, used to
// verify the parser's round-trip property (parse . format . parse is a
// fixpoint on the resulting AST).
package format

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/streamql/streamql/sql/ast"
)

// Options controls formatting behavior.
type Options struct {
	Uppercase bool // uppercase keywords and operators
}

// DefaultOptions are the options used by String.
var DefaultOptions = Options{Uppercase: true}

// String formats sel as canonical SQL using DefaultOptions.
func String(sel *ast.Select) string {
	f := &Formatter{opts: DefaultOptions}
	f.formatSelect(sel)
	return f.buf.String()
}

// Expr formats a single expression as canonical SQL, used to compare
// expressions structurally (e.g. for GROUP BY verbatim-match checks).
func Expr(e ast.Expr) string {
	f := &Formatter{opts: DefaultOptions}
	f.formatExpr(e)
	return f.buf.String()
}

// Formatter renders AST nodes to SQL text.
type Formatter struct {
	buf  bytes.Buffer
	opts Options
}

// New creates a Formatter with the given options.
func New(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

// Format renders sel to the formatter's internal buffer.
func (f *Formatter) Format(sel *ast.Select) {
	f.formatSelect(sel)
}

// String returns the accumulated output.
func (f *Formatter) String() string {
	return f.buf.String()
}

func (f *Formatter) kw(s string) string {
	if f.opts.Uppercase {
		return strings.ToUpper(s)
	}
	return strings.ToLower(s)
}

func (f *Formatter) write(s string) {
	f.buf.WriteString(s)
}

func (f *Formatter) formatSelect(sel *ast.Select) {
	f.write(f.kw("select"))
	f.write(" ")
	for i, p := range sel.Projection {
		if i > 0 {
			f.write(", ")
		}
		f.formatExpr(p)
	}
	if sel.Source != nil {
		f.write(" ")
		f.write(f.kw("from"))
		f.write(" ")
		f.formatSource(sel.Source)
	}
	if sel.Where != nil {
		f.write(" ")
		f.write(f.kw("where"))
		f.write(" ")
		f.formatExpr(sel.Where)
	}
	if sel.GroupBy != nil {
		f.write(" ")
		f.write(f.kw("group by"))
		f.write(" ")
		for i, e := range sel.GroupBy.Exprs {
			if i > 0 {
				f.write(", ")
			}
			f.formatExpr(e)
		}
	}
	if sel.Having != nil {
		f.write(" ")
		f.write(f.kw("having"))
		f.write(" ")
		f.formatExpr(sel.Having)
	}
	if sel.Window != nil {
		f.write(" ")
		f.write(f.kw("window"))
		f.write(" ")
		f.formatWindow(sel.Window)
	}
}

func (f *Formatter) formatSource(src *ast.Source) {
	switch from := src.From.(type) {
	case *ast.NamedSource:
		f.write(from.Name)
	case *ast.SubQuerySource:
		f.write("(")
		f.formatSelect(from.Select)
		f.write(")")
	}
	if src.Alias != nil {
		f.write(" ")
		f.write(f.kw("as"))
		f.write(" ")
		f.write(*src.Alias)
	}
}

func (f *Formatter) formatWindow(w *ast.WindowSpec) {
	switch w.Kind {
	case ast.WindowFixed:
		f.write(f.kw("fixed"))
		f.write("(")
		f.formatDuration(w.LengthMs)
		f.write(")")
	case ast.WindowSliding:
		f.write(f.kw("sliding"))
		f.write("(")
		f.formatDuration(w.LengthMs)
		f.write(", ")
		f.formatDuration(w.IntervalMs)
		f.write(")")
	case ast.WindowPeriod:
		f.write(f.kw(w.Period.String()))
	}
}

// formatDuration renders a millisecond count in the largest exact unit
// (m, then s, then ms), inverting the parser's parseDuration normalization.
func (f *Formatter) formatDuration(ms int64) {
	switch {
	case ms%60000 == 0:
		f.write(strconv.FormatInt(ms/60000, 10))
		f.write("m")
	case ms%1000 == 0:
		f.write(strconv.FormatInt(ms/1000, 10))
		f.write("s")
	default:
		f.write(strconv.FormatInt(ms, 10))
		f.write("ms")
	}
}

func (f *Formatter) formatExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Column:
		if n.Qualifier != nil {
			f.write(*n.Qualifier)
			f.write(".")
		}
		f.write(n.Name)
	case *ast.Wildcard:
		if n.Qualifier != nil {
			f.write(*n.Qualifier)
			f.write(".")
		}
		f.write("*")
	case *ast.Literal:
		f.formatLiteral(n)
	case *ast.Unary:
		f.write(f.kw(n.Op.String()))
		if n.Op == ast.Not {
			f.write(" ")
		}
		f.formatOperand(n.Expr, n)
	case *ast.Binary:
		f.formatOperand(n.Lhs, n)
		f.write(" ")
		f.write(f.kw(n.Op.String()))
		f.write(" ")
		f.formatOperand(n.Rhs, n)
	case *ast.Call:
		if n.Namespace != nil {
			f.write(*n.Namespace)
			f.write(".")
		}
		f.write(n.Name)
		f.write("(")
		for i, a := range n.Args {
			if i > 0 {
				f.write(", ")
			}
			f.formatExpr(a)
		}
		f.write(")")
	case *ast.Alias:
		f.formatExpr(n.Expr)
		f.write(" ")
		f.write(f.kw("as"))
		f.write(" ")
		f.write(n.Name)
	}
}

// formatOperand wraps child in parentheses when its precedence is lower
// than parent's, so the printed text re-parses to the same tree.
func (f *Formatter) formatOperand(child ast.Expr, parent ast.Expr) {
	if needsParens(child, parent) {
		f.write("(")
		f.formatExpr(child)
		f.write(")")
		return
	}
	f.formatExpr(child)
}

func needsParens(child, parent ast.Expr) bool {
	cp, ok := precedence(child)
	if !ok {
		return false
	}
	pp, ok := precedence(parent)
	if !ok {
		return false
	}
	// Binary operators associate to the left, so a right operand of the
	// same tier needs parentheses to keep its grouping.
	if b, isBinary := parent.(*ast.Binary); isBinary && b.Rhs == child && cp == pp {
		return true
	}
	return cp < pp
}

// precedence ranks binary/unary operators low-to-high: OR, AND, comparison,
// +/-, */, with unary NOT and - tightest.
func precedence(e ast.Expr) (int, bool) {
	switch n := e.(type) {
	case *ast.Binary:
		switch n.Op {
		case ast.Or:
			return 0, true
		case ast.And:
			return 1, true
		case ast.Eq, ast.NotEq, ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
			return 2, true
		case ast.Plus, ast.Minus:
			return 3, true
		case ast.Multiply, ast.Divide:
			return 4, true
		}
	case *ast.Unary:
		return 5, true
	}
	return 0, false
}

func (f *Formatter) formatLiteral(l *ast.Literal) {
	switch l.Kind {
	case ast.LiteralBool:
		if l.Bool {
			f.write(f.kw("true"))
		} else {
			f.write(f.kw("false"))
		}
	case ast.LiteralInt:
		f.write(strconv.FormatInt(l.Int, 10))
	case ast.LiteralFloat:
		f.write(strconv.FormatFloat(l.Float, 'g', -1, 64))
	case ast.LiteralString:
		f.write("'")
		f.write(escapeString(l.String))
		f.write("'")
	}
}

func escapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
