package token

// keywords maps lowercase keyword text to its token kind. Populated once at
// package init and never mutated afterward (a process-lifetime immutable,
// like the function registry in package expr/function).
var keywords map[string]Token

func init() {
	keywords = map[string]Token{
		"select": SELECT,
		"from":   FROM,
		"where":  WHERE,
		"group":  GROUP,
		"by":     BY,
		"having": HAVING,
		"window": WINDOW,
		"as":     AS,
		"or":     OR,
		"and":    AND,
		"not":    NOT,
		"true":   TRUE,
		"false":  FALSE,
		"fixed":  FIXED,
		"sliding": SLIDING,
		"day":    DAY,
		"week":   WEEK,
		"month":  MONTH,
		"year":   YEAR,
	}
}

// LookupIdent returns the keyword token for ident if it is a (case
// insensitive) reserved word, or IDENT otherwise.
func LookupIdent(ident string) Token {
	if len(ident) > 16 {
		// Longest keyword ("sliding") is 7 bytes; nothing this long can match.
		return IDENT
	}
	var buf [16]byte
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		if c >= 'A' && c <= 'Z' {
			c += 32
		}
		buf[i] = c
	}
	if tok, ok := keywords[string(buf[:len(ident)])]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident names a reserved keyword.
func IsKeyword(ident string) bool {
	return LookupIdent(ident) != IDENT
}
