// Package lexer turns Vero source text into a flat token stream. Lexing is
// total: any byte sequence produces a token slice terminated by EOF plus zero
// or more diagnostics, and the same input always produces the same output.
package lexer

import (
	"strings"

	"github.com/verolang/vero/internal/diag"
)

type lexer struct {
	src    string
	tokens []Token
	diags  []diag.Diagnostic

	start    int // offset of the token being scanned
	cur      int // offset of the next unread byte
	line     int // 1-based line of cur
	col      int // 1-based column of cur
	startPos diag.Position
}

// Tokenize scans src and returns its tokens and any diagnostics. Malformed
// input (an unterminated string, a stray byte) is reported and scanning
// resumes at the next safe point; it never stops the scan.
func Tokenize(src string) ([]Token, []diag.Diagnostic) {
	l := &lexer{src: src, line: 1, col: 1}
	for !l.atEnd() {
		l.mark()
		l.scanToken()
	}
	l.mark()
	l.add(EOF, "")
	return l.tokens, l.diags
}

func (l *lexer) mark() {
	l.start = l.cur
	l.startPos = diag.Position{Line: l.line, Col: l.col, Offset: l.cur}
}

func (l *lexer) scanToken() {
	c := l.advance()
	switch c {
	case ' ', '\t', '\r', '\n':
	case '#':
		for !l.atEnd() && l.peek() != '\n' {
			l.advance()
		}
	case '{':
		if l.match('{') {
			l.variable()
		} else {
			l.add(LBRACE, "")
		}
	case '}':
		l.add(RBRACE, "")
	case ',':
		l.add(COMMA, "")
	case '"':
		l.str()
	case '@':
		l.tag()
	default:
		switch {
		case isDigit(c):
			l.number()
		case isIdentStart(c):
			l.ident()
		default:
			l.errorf("unexpected character %q", c)
		}
	}
}

// str scans the remainder of a string literal; the opening quote is already
// consumed. A string that hits a newline or EOF before its closing quote is
// reported once and still yields a token with the text read so far.
func (l *lexer) str() {
	var b strings.Builder
	for !l.atEnd() && l.peek() != '"' && l.peek() != '\n' {
		c := l.advance()
		if c != '\\' || l.atEnd() {
			b.WriteByte(c)
			continue
		}
		switch esc := l.advance(); esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(esc)
		}
	}
	if !l.match('"') {
		l.errorf("unterminated string")
	}
	l.add(STRING, b.String())
}

// variable scans a {{path}} reference; both opening braces are already
// consumed.
func (l *lexer) variable() {
	for !l.atEnd() && isPathChar(l.peek()) {
		l.advance()
	}
	path := l.src[l.start+2 : l.cur]
	terminated := l.match('}') && l.match('}')
	switch {
	case path == "":
		l.errorf("empty variable reference")
	case !terminated:
		l.errorf("unterminated variable reference")
	}
	l.add(VARIABLE, path)
}

func (l *lexer) tag() {
	for !l.atEnd() && isTagChar(l.peek()) {
		l.advance()
	}
	name := l.src[l.start+1 : l.cur]
	if name == "" {
		l.errorf("empty tag")
		return
	}
	l.add(TAG, name)
}

func (l *lexer) number() {
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	l.add(NUMBER, l.src[l.start:l.cur])
}

func (l *lexer) ident() {
	for !l.atEnd() && isIdentChar(l.peek()) {
		l.advance()
	}
	word := l.src[l.start:l.cur]
	if t, ok := keywords[word]; ok {
		l.add(t, "")
		return
	}
	l.add(IDENT, word)
}

func (l *lexer) add(t Type, value string) {
	l.tokens = append(l.tokens, Token{
		Type:   t,
		Lexeme: l.src[l.start:l.cur],
		Value:  value,
		Pos:    l.startPos,
	})
}

func (l *lexer) errorf(format string, args ...any) {
	l.diags = append(l.diags, diag.Errorf(l.startPos, format, args...))
}

func (l *lexer) advance() byte {
	c := l.src[l.cur]
	l.cur++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *lexer) peekNext() byte {
	if l.cur+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *lexer) match(c byte) bool {
	if l.atEnd() || l.src[l.cur] != c {
		return false
	}
	l.advance()
	return true
}

func (l *lexer) atEnd() bool {
	return l.cur >= len(l.src)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isPathChar(c byte) bool {
	return isIdentChar(c) || c == '.'
}

func isTagChar(c byte) bool {
	return isIdentChar(c) || c == ':' || c == '-'
}
