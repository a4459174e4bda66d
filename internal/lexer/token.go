package lexer

import "github.com/verolang/vero/internal/diag"

// Type identifies a kind of token.
type Type int

const (
	ILLEGAL Type = iota
	EOF
	IDENT    // FrameTest, css, item
	STRING   // "Sign In"
	NUMBER   // 3, 1.5
	VARIABLE // {{username}}
	TAG      // @smoke
	LBRACE
	RBRACE
	COMMA

	// Statement and clause keywords. Keywords are uppercase in source and
	// the table below is case-sensitive, so `click` stays an identifier.
	FEATURE
	SCENARIO
	NAVIGATE
	GOTO
	OPEN
	CLICK
	FILL
	WITH
	SELECT
	OPTION
	CHECK
	UNCHECK
	HOVER
	OVER
	WAIT
	FOR
	SEE
	ASSERT
	IS
	NOT
	VISIBLE
	HIDDEN
	ENABLED
	DISABLED
	CHECKED
	HAS
	TEXT
	CONTAINS
	SWITCH
	TO
	FRAME
	MAIN
	PRESS
	SCROLL
	UP
	DOWN
	SCREENSHOT
	AS
	SET
	IF
	ELSE
	REPEAT
	TIMES
	EACH
	IN
	WHILE
	BREAK
	CONTINUE
	END
	SECONDS
	EQUALS
)

var keywords = map[string]Type{
	"FEATURE":    FEATURE,
	"SCENARIO":   SCENARIO,
	"NAVIGATE":   NAVIGATE,
	"GOTO":       GOTO,
	"OPEN":       OPEN,
	"CLICK":      CLICK,
	"FILL":       FILL,
	"WITH":       WITH,
	"SELECT":     SELECT,
	"OPTION":     OPTION,
	"CHECK":      CHECK,
	"UNCHECK":    UNCHECK,
	"HOVER":      HOVER,
	"OVER":       OVER,
	"WAIT":       WAIT,
	"FOR":        FOR,
	"SEE":        SEE,
	"ASSERT":     ASSERT,
	"IS":         IS,
	"NOT":        NOT,
	"VISIBLE":    VISIBLE,
	"HIDDEN":     HIDDEN,
	"ENABLED":    ENABLED,
	"DISABLED":   DISABLED,
	"CHECKED":    CHECKED,
	"HAS":        HAS,
	"CONTAINS":   CONTAINS,
	"TEXT":       TEXT,
	"SWITCH":     SWITCH,
	"TO":         TO,
	"FRAME":      FRAME,
	"MAIN":       MAIN,
	"PRESS":      PRESS,
	"SCROLL":     SCROLL,
	"UP":         UP,
	"DOWN":       DOWN,
	"SCREENSHOT": SCREENSHOT,
	"AS":         AS,
	"SET":        SET,
	"IF":         IF,
	"ELSE":       ELSE,
	"REPEAT":     REPEAT,
	"TIMES":      TIMES,
	"EACH":       EACH,
	"IN":         IN,
	"WHILE":      WHILE,
	"BREAK":      BREAK,
	"CONTINUE":   CONTINUE,
	"END":        END,
	"SECONDS":    SECONDS,
	"EQUALS":     EQUALS,
}

var typeNames = map[Type]string{
	ILLEGAL:  "ILLEGAL",
	EOF:      "EOF",
	IDENT:    "IDENT",
	STRING:   "STRING",
	NUMBER:   "NUMBER",
	VARIABLE: "VARIABLE",
	TAG:      "TAG",
	LBRACE:   "LBRACE",
	RBRACE:   "RBRACE",
	COMMA:    "COMMA",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	for word, kt := range keywords {
		if kt == t {
			return word
		}
	}
	return "ILLEGAL"
}

// Token is one lexical unit of Vero source. Lexeme is the exact source text.
// Value carries the decoded payload where one exists: the unquoted string
// with escapes resolved, the path inside {{...}}, the tag name without '@',
// the identifier itself, or the number as written.
type Token struct {
	Type   Type
	Lexeme string
	Value  string
	Pos    diag.Position
}
