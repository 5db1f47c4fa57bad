// Package lexer provides a hand-written lexical scanner for the query
// language's SQL-style grammar (see sql/token for the token kinds it
// produces).
package lexer

import (
	"strings"
	"sync"

	"github.com/streamql/streamql/sql/token"
)

// Lexer tokenizes SQL input one Item at a time.
type Lexer struct {
	input   string
	start   int // start offset of the token currently being scanned
	pos     int // current scan offset
	line    int
	linePos int // offset of the start of the current line
	item    token.Item
	peeked  bool
}

var lexerPool = sync.Pool{
	New: func() any { return &Lexer{} },
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Get returns a pooled Lexer reset to scan input.
func Get(input string) *Lexer {
	l := lexerPool.Get().(*Lexer)
	l.Reset(input)
	return l
}

// Put returns l to the pool. l must not be used again afterward.
func Put(l *Lexer) {
	lexerPool.Put(l)
}

// Reset reinitializes l to scan a new input string.
func (l *Lexer) Reset(input string) {
	l.input = input
	l.start = 0
	l.pos = 0
	l.line = 1
	l.linePos = 0
	l.item = token.Item{}
	l.peeked = false
}

// Next consumes and returns the next token.
func (l *Lexer) Next() token.Item {
	if l.peeked {
		l.peeked = false
		return l.item
	}
	l.item = l.scan()
	return l.item
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '@' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) scan() token.Item {
	l.skipWhitespace()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.makeItem(token.EOF, "")
	}

	ch := l.input[l.pos]
	switch ch {
	case '(':
		l.pos++
		return l.makeItem(token.LPAREN, "(")
	case ')':
		l.pos++
		return l.makeItem(token.RPAREN, ")")
	case ',':
		l.pos++
		return l.makeItem(token.COMMA, ",")
	case '+':
		l.pos++
		return l.makeItem(token.PLUS, "+")
	case '-':
		l.pos++
		return l.makeItem(token.MINUS, "-")
	case '*':
		l.pos++
		return l.makeItem(token.ASTERISK, "*")
	case '/':
		l.pos++
		return l.makeItem(token.SLASH, "/")
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber()
		}
		l.pos++
		return l.makeItem(token.DOT, ".")
	case '=':
		l.pos++
		return l.makeItem(token.EQ, "=")
	case '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.makeItem(token.NEQ, "!=")
		}
		l.pos++
		return l.makeItem(token.ILLEGAL, "!")
	case '<':
		if l.pos+1 < len(l.input) {
			switch l.input[l.pos+1] {
			case '=':
				l.pos += 2
				return l.makeItem(token.LTE, "<=")
			case '>':
				l.pos += 2
				return l.makeItem(token.NEQ, "<>")
			}
		}
		l.pos++
		return l.makeItem(token.LT, "<")
	case '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return l.makeItem(token.GTE, ">=")
		}
		l.pos++
		return l.makeItem(token.GT, ">")
	case '\'':
		return l.scanString('\'')
	case '"':
		return l.scanString('"')
	}

	if isIdentStart(ch) {
		return l.scanIdentifier()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}

	l.pos++
	return l.makeItem(token.ILLEGAL, string(ch))
}

func (l *Lexer) makeItem(typ token.Token, val string) token.Item {
	return token.Item{
		Type:  typ,
		Value: val,
		Pos: token.Pos{
			Offset: l.start,
			Line:   l.line,
			Column: l.start - l.linePos + 1,
		},
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		case '\n':
			l.pos++
			l.line++
			l.linePos = l.pos
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	val := l.input[l.start:l.pos]
	return l.makeItem(token.LookupIdent(val), val)
}

func (l *Lexer) scanNumber() token.Item {
	tok := token.INT
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		tok = token.FLOAT
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			tok = token.FLOAT
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			// No digits after 'e' (or bare sign): not an exponent after all.
			l.pos = save
		}
	}
	return l.makeItem(tok, l.input[l.start:l.pos])
}

// scanString handles single- or double-quoted string literals, applying the
// escapes \\ \b \r \n \t \0 \Z and a doubled quote-character literal; any
// other backslash-escaped character stands for itself.
func (l *Lexer) scanString(quote byte) token.Item {
	l.pos++ // opening quote
	var buf strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == quote {
				buf.WriteByte(quote)
				l.pos += 2
				continue
			}
			l.pos++
			item := l.makeItem(token.STRING, buf.String())
			return item
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			switch next {
			case '\\':
				buf.WriteByte('\\')
			case 'b':
				buf.WriteByte('\b')
			case 'r':
				buf.WriteByte('\r')
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '0':
				buf.WriteByte(0)
			case 'Z':
				buf.WriteByte(0x1A)
			default:
				buf.WriteByte(next)
			}
			l.pos += 2
			continue
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		buf.WriteByte(ch)
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}
