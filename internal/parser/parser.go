// Package parser builds the Vero AST from a token stream. Parsing never
// stops at the first problem: a malformed statement is reported as a
// diagnostic and the parser skips to the next statement boundary, so
// well-formed neighbors survive.
package parser

import (
	"fmt"
	"strings"

	"github.com/verolang/vero/internal/diag"
	"github.com/verolang/vero/internal/lexer"
)

type parser struct {
	toks  []lexer.Token
	pos   int
	diags []diag.Diagnostic
}

// statementStart marks the keywords that can begin a statement; error
// recovery skips forward until it sees one of these, a block edge, or EOF.
var statementStart = map[lexer.Type]bool{
	lexer.NAVIGATE:   true,
	lexer.GOTO:       true,
	lexer.OPEN:       true,
	lexer.CLICK:      true,
	lexer.FILL:       true,
	lexer.SELECT:     true,
	lexer.CHECK:      true,
	lexer.UNCHECK:    true,
	lexer.HOVER:      true,
	lexer.WAIT:       true,
	lexer.SEE:        true,
	lexer.ASSERT:     true,
	lexer.SWITCH:     true,
	lexer.PRESS:      true,
	lexer.SCROLL:     true,
	lexer.SCREENSHOT: true,
	lexer.SET:        true,
	lexer.IF:         true,
	lexer.REPEAT:     true,
	lexer.FOR:        true,
	lexer.WHILE:      true,
	lexer.BREAK:      true,
	lexer.CONTINUE:   true,
}

// Parse consumes the token stream produced by lexer.Tokenize and returns the
// features it could build plus any diagnostics. It accepts any token slice
// and never panics.
func Parse(toks []lexer.Token) ([]*Feature, []diag.Diagnostic) {
	if len(toks) == 0 || toks[len(toks)-1].Type != lexer.EOF {
		toks = append(toks, lexer.Token{Type: lexer.EOF})
	}
	p := &parser{toks: toks}

	var features []*Feature
	for !p.at(lexer.EOF) {
		if p.at(lexer.FEATURE) {
			if f := p.feature(); f != nil {
				features = append(features, f)
			}
			continue
		}
		p.errorf(p.cur(), "expected FEATURE, found %s", describe(p.cur()))
		p.next()
		p.syncTo(lexer.FEATURE)
	}
	return features, p.diags
}

func (p *parser) feature() *Feature {
	kw := p.next()
	f := &Feature{Position: kw.Pos}

	name, ok := p.name("a feature name")
	if !ok {
		p.syncTo(lexer.FEATURE)
		return nil
	}
	f.Name = name

	if !p.accept(lexer.LBRACE) {
		p.errorf(p.cur(), "expected '{' after feature name, found %s", describe(p.cur()))
		p.syncTo(lexer.FEATURE)
		return nil
	}

	for {
		switch p.cur().Type {
		case lexer.RBRACE:
			p.next()
			return f
		case lexer.EOF, lexer.FEATURE:
			p.errorf(p.cur(), "unclosed FEATURE block")
			return f
		case lexer.SCENARIO:
			if s := p.scenario(); s != nil {
				f.Scenarios = append(f.Scenarios, s)
			}
		default:
			p.errorf(p.cur(), "expected SCENARIO or '}', found %s", describe(p.cur()))
			p.next()
			p.syncInFeature()
		}
	}
}

func (p *parser) scenario() *Scenario {
	kw := p.next()
	s := &Scenario{Position: kw.Pos}

	name, ok := p.name("a scenario name")
	if !ok {
		p.syncInFeature()
		return nil
	}
	s.Name = name

	for p.at(lexer.TAG) {
		s.Tags = appendTag(s.Tags, p.next().Value)
	}

	if !p.accept(lexer.LBRACE) {
		p.errorf(p.cur(), "expected '{' after scenario name, found %s", describe(p.cur()))
		p.syncInFeature()
		return nil
	}

	s.Statements = p.block()
	return s
}

// block parses statements until the closing '}' and consumes it. Hitting EOF
// or a SCENARIO/FEATURE keyword means a brace went missing; the block ends
// there so the outer parse can pick up.
func (p *parser) block() []Statement {
	var stmts []Statement
	for {
		switch p.cur().Type {
		case lexer.RBRACE:
			p.next()
			return stmts
		case lexer.EOF, lexer.SCENARIO, lexer.FEATURE:
			p.errorf(p.cur(), "unclosed block")
			return stmts
		}
		if st := p.statement(); st != nil {
			stmts = append(stmts, st)
		}
	}
}

func (p *parser) statement() Statement {
	tok := p.cur()
	switch tok.Type {
	case lexer.NAVIGATE:
		p.next()
		if !p.accept(lexer.TO) {
			return p.bail("expected TO after NAVIGATE")
		}
		url, ok := p.literal("a URL")
		if !ok {
			return p.sync()
		}
		return &NavigateStmt{URL: url, Position: tok.Pos}

	case lexer.OPEN, lexer.GOTO:
		p.next()
		url, ok := p.literal("a URL")
		if !ok {
			return p.sync()
		}
		return &NavigateStmt{URL: url, Position: tok.Pos}

	case lexer.CLICK:
		p.next()
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		return &ClickStmt{Target: target, Position: tok.Pos}

	case lexer.FILL:
		p.next()
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		if !p.accept(lexer.WITH) {
			return p.bail("expected WITH after FILL target")
		}
		value, ok := p.literal("a value")
		if !ok {
			return p.sync()
		}
		return &FillStmt{Target: target, Value: value, Position: tok.Pos}

	case lexer.SELECT:
		p.next()
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		if !p.accept(lexer.OPTION) {
			return p.bail("expected OPTION after SELECT target")
		}
		option, ok := p.literal("an option value")
		if !ok {
			return p.sync()
		}
		return &SelectStmt{Target: target, Option: option, Position: tok.Pos}

	case lexer.CHECK:
		p.next()
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		return &CheckStmt{Target: target, Position: tok.Pos}

	case lexer.UNCHECK:
		p.next()
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		return &UncheckStmt{Target: target, Position: tok.Pos}

	case lexer.HOVER:
		p.next()
		if !p.accept(lexer.OVER) {
			return p.bail("expected OVER after HOVER")
		}
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		return &HoverStmt{Target: target, Position: tok.Pos}

	case lexer.WAIT:
		p.next()
		if p.accept(lexer.FOR) {
			target, ok := p.locator()
			if !ok {
				return p.sync()
			}
			return &WaitForStmt{Target: target, Position: tok.Pos}
		}
		if !p.at(lexer.NUMBER) {
			return p.bail("expected FOR or a duration after WAIT")
		}
		n := p.next()
		if !p.accept(lexer.SECONDS) {
			return p.bail("expected SECONDS after the duration")
		}
		return &WaitStmt{Seconds: n.Value, Position: tok.Pos}

	case lexer.SEE, lexer.ASSERT:
		p.next()
		target, ok := p.locator()
		if !ok {
			return p.sync()
		}
		pred := Predicate{Kind: PredVisible}
		if p.at(lexer.IS) || p.at(lexer.HAS) || p.at(lexer.CONTAINS) {
			pred, ok = p.predicate()
			if !ok {
				return p.sync()
			}
		}
		return &AssertStmt{Target: target, Pred: pred, Position: tok.Pos}

	case lexer.SWITCH:
		p.next()
		if !p.accept(lexer.TO) {
			return p.bail("expected TO after SWITCH")
		}
		switch p.cur().Type {
		case lexer.FRAME:
			p.next()
			target, ok := p.locator()
			if !ok {
				return p.sync()
			}
			return &SwitchFrameStmt{Target: target, Position: tok.Pos}
		case lexer.MAIN:
			p.next()
			if !p.accept(lexer.FRAME) {
				return p.bail("expected FRAME after MAIN")
			}
			return &SwitchMainStmt{Position: tok.Pos}
		}
		return p.bail("expected FRAME or MAIN FRAME after SWITCH TO")

	case lexer.PRESS:
		p.next()
		key, ok := p.literal("a key name")
		if !ok {
			return p.sync()
		}
		return &PressStmt{Key: key, Position: tok.Pos}

	case lexer.SCROLL:
		p.next()
		switch {
		case p.accept(lexer.DOWN):
			return &ScrollStmt{Down: true, Position: tok.Pos}
		case p.accept(lexer.UP):
			return &ScrollStmt{Position: tok.Pos}
		}
		return p.bail("expected UP or DOWN after SCROLL")

	case lexer.SCREENSHOT:
		p.next()
		if !p.accept(lexer.AS) {
			return p.bail("expected AS after SCREENSHOT")
		}
		name, ok := p.literal("a screenshot name")
		if !ok {
			return p.sync()
		}
		return &ScreenshotStmt{Name: name, Position: tok.Pos}

	case lexer.SET:
		p.next()
		if !p.at(lexer.IDENT) {
			return p.bail("expected a variable name after SET")
		}
		v := p.next()
		if !p.accept(lexer.TO) {
			return p.bail("expected TO after the variable name")
		}
		value, ok := p.literal("a value")
		if !ok {
			return p.sync()
		}
		return &SetStmt{Name: v.Value, Value: value, Position: tok.Pos}

	case lexer.IF:
		return p.ifStatement()

	case lexer.REPEAT:
		p.next()
		if !p.at(lexer.NUMBER) {
			return p.bail("expected a count after REPEAT")
		}
		n := p.next()
		if strings.Contains(n.Value, ".") {
			p.errorf(n, "REPEAT count must be a whole number")
			return p.sync()
		}
		if !p.accept(lexer.TIMES) {
			return p.bail("expected TIMES after the count")
		}
		if !p.accept(lexer.LBRACE) {
			return p.bail("expected '{' after TIMES")
		}
		return &RepeatStmt{Count: n.Value, Body: p.block(), Position: tok.Pos}

	case lexer.FOR:
		return p.forEach()

	case lexer.WHILE:
		p.next()
		cond, ok := p.condition()
		if !ok {
			return p.sync()
		}
		if !p.accept(lexer.LBRACE) {
			return p.bail("expected '{' after WHILE condition")
		}
		return &WhileStmt{Cond: cond, Body: p.block(), Position: tok.Pos}

	case lexer.BREAK:
		p.next()
		return &BreakStmt{Position: tok.Pos}

	case lexer.CONTINUE:
		p.next()
		return &ContinueStmt{Position: tok.Pos}

	case lexer.END:
		p.errorf(tok, "unexpected END; blocks are closed with '}'")
		p.next()
		return nil
	}

	p.errorf(tok, "expected a statement, found %s", describe(tok))
	p.next()
	p.syncStatement()
	return nil
}

func (p *parser) ifStatement() Statement {
	tok := p.next()
	cond, ok := p.condition()
	if !ok {
		return p.sync()
	}
	if !p.accept(lexer.LBRACE) {
		return p.bail("expected '{' after IF condition")
	}
	st := &IfStmt{Cond: cond, Then: p.block(), Position: tok.Pos}

	if !p.accept(lexer.ELSE) {
		return st
	}
	if p.at(lexer.IF) {
		if nested := p.ifStatement(); nested != nil {
			st.Else = []Statement{nested}
		}
		return st
	}
	if !p.accept(lexer.LBRACE) {
		p.errorf(p.cur(), "expected '{' or IF after ELSE, found %s", describe(p.cur()))
		p.syncStatement()
		return st
	}
	st.Else = p.block()
	return st
}

func (p *parser) forEach() Statement {
	tok := p.next()
	if !p.accept(lexer.EACH) {
		return p.bail("expected EACH after FOR")
	}
	if !p.at(lexer.IDENT) {
		return p.bail("expected a loop variable after FOR EACH")
	}
	v := p.next()
	if !p.accept(lexer.IN) {
		return p.bail("expected IN after the loop variable")
	}

	st := &ForEachStmt{Var: v.Value, Position: tok.Pos}
	if p.at(lexer.VARIABLE) {
		c := p.next()
		st.Collection = &VarRef{Path: c.Value, Position: c.Pos}
	} else {
		item, ok := p.literal("a list item")
		if !ok {
			return p.sync()
		}
		st.Items = append(st.Items, item)
		for p.accept(lexer.COMMA) {
			item, ok = p.literal("a list item")
			if !ok {
				return p.sync()
			}
			st.Items = append(st.Items, item)
		}
	}

	if !p.accept(lexer.LBRACE) {
		return p.bail("expected '{' after the FOR EACH items")
	}
	st.Body = p.block()
	return st
}

// locator parses `<strategy> "<value>"` with an optional `name "<value>"`
// clause on role locators.
func (p *parser) locator() (Locator, bool) {
	tok := p.cur()
	if tok.Type != lexer.IDENT {
		p.errorf(tok, "expected a locator strategy, found %s", describe(tok))
		return Locator{}, false
	}
	strat, ok := StrategyFromIdent(tok.Value)
	if !ok {
		p.errorf(tok, "unknown locator strategy %q", tok.Value)
		return Locator{}, false
	}
	p.next()

	value, ok := p.literal("a locator value")
	if !ok {
		return Locator{}, false
	}
	loc := Locator{Strategy: strat, Value: value, Position: tok.Pos}

	if p.at(lexer.IDENT) && p.cur().Value == "name" {
		nameTok := p.next()
		nameVal, ok := p.literal("an accessible name")
		if !ok {
			return Locator{}, false
		}
		if strat != Role {
			p.errorf(nameTok, "name clause is only valid on role locators")
			return Locator{}, false
		}
		loc.Name = &nameVal
	}
	return loc, true
}

func (p *parser) predicate() (Predicate, bool) {
	switch p.cur().Type {
	case lexer.IS:
		p.next()
		switch p.cur().Type {
		case lexer.VISIBLE:
			p.next()
			return Predicate{Kind: PredVisible}, true
		case lexer.HIDDEN:
			p.next()
			return Predicate{Kind: PredHidden}, true
		case lexer.ENABLED:
			p.next()
			return Predicate{Kind: PredEnabled}, true
		case lexer.DISABLED:
			p.next()
			return Predicate{Kind: PredDisabled}, true
		case lexer.CHECKED:
			p.next()
			return Predicate{Kind: PredChecked}, true
		}
		p.errorf(p.cur(), "expected VISIBLE, HIDDEN, ENABLED, DISABLED or CHECKED after IS, found %s", describe(p.cur()))
		return Predicate{}, false

	case lexer.HAS:
		p.next()
		if !p.accept(lexer.TEXT) {
			p.errorf(p.cur(), "expected TEXT after HAS, found %s", describe(p.cur()))
			return Predicate{}, false
		}
		arg, ok := p.literal("the expected text")
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Kind: PredHasText, Arg: arg}, true

	case lexer.CONTAINS:
		p.next()
		arg, ok := p.literal("the expected text")
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Kind: PredContains, Arg: arg}, true
	}

	p.errorf(p.cur(), "expected a predicate, found %s", describe(p.cur()))
	return Predicate{}, false
}

func (p *parser) condition() (Condition, bool) {
	tok := p.cur()
	switch tok.Type {
	case lexer.VARIABLE:
		p.next()
		ref := VarRef{Path: tok.Value, Position: tok.Pos}
		var op CompareOp
		switch {
		case p.accept(lexer.EQUALS):
			op = OpEquals
		case p.at(lexer.NOT):
			p.next()
			if !p.accept(lexer.EQUALS) {
				p.errorf(p.cur(), "expected EQUALS after NOT, found %s", describe(p.cur()))
				return nil, false
			}
			op = OpNotEquals
		case p.accept(lexer.CONTAINS):
			op = OpContains
		default:
			p.errorf(p.cur(), "expected EQUALS, NOT EQUALS or CONTAINS after the variable, found %s", describe(p.cur()))
			return nil, false
		}
		value, ok := p.literal("a comparison value")
		if !ok {
			return nil, false
		}
		return &VarCond{Ref: ref, Op: op, Value: value, Position: tok.Pos}, true

	case lexer.STRING:
		t := p.next()
		return &ExprCond{Expr: Literal{Text: t.Value, Position: t.Pos}, Position: t.Pos}, true

	case lexer.IDENT:
		target, ok := p.locator()
		if !ok {
			return nil, false
		}
		pred, ok := p.predicate()
		if !ok {
			return nil, false
		}
		return &ElementCond{Target: target, Pred: pred, Position: tok.Pos}, true
	}

	p.errorf(tok, "expected a condition, found %s", describe(tok))
	return nil, false
}

func (p *parser) literal(what string) (Literal, bool) {
	if p.at(lexer.STRING) {
		t := p.next()
		return Literal{Text: t.Value, Position: t.Pos}, true
	}
	p.errorf(p.cur(), "expected %s, found %s", what, describe(p.cur()))
	return Literal{}, false
}

func (p *parser) name(what string) (string, bool) {
	if p.at(lexer.IDENT) || p.at(lexer.STRING) {
		return p.next().Value, true
	}
	p.errorf(p.cur(), "expected %s, found %s", what, describe(p.cur()))
	return "", false
}

// bail reports a malformed statement at the current token and skips to the
// next boundary. Callers have already consumed the statement's leading
// keyword, so progress is guaranteed.
func (p *parser) bail(msg string) Statement {
	p.errorf(p.cur(), "%s, found %s", msg, describe(p.cur()))
	p.syncStatement()
	return nil
}

// sync skips to the next boundary after a nested parse already reported the
// problem.
func (p *parser) sync() Statement {
	p.syncStatement()
	return nil
}

func (p *parser) syncStatement() {
	for {
		t := p.cur().Type
		if t == lexer.EOF || t == lexer.RBRACE || t == lexer.SCENARIO ||
			t == lexer.FEATURE || t == lexer.END || statementStart[t] {
			return
		}
		p.next()
	}
}

func (p *parser) syncInFeature() {
	for {
		switch p.cur().Type {
		case lexer.EOF, lexer.SCENARIO, lexer.RBRACE, lexer.FEATURE:
			return
		}
		p.next()
	}
}

func (p *parser) syncTo(t lexer.Type) {
	for !p.at(lexer.EOF) && !p.at(t) {
		p.next()
	}
}

func (p *parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) at(t lexer.Type) bool {
	return p.cur().Type == t
}

func (p *parser) next() lexer.Token {
	t := p.cur()
	if t.Type != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(t lexer.Type) bool {
	if p.at(t) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(tok lexer.Token, format string, args ...any) {
	p.diags = append(p.diags, diag.Errorf(tok.Pos, format, args...))
}

func appendTag(tags []string, name string) []string {
	for _, t := range tags {
		if t == name {
			return tags
		}
	}
	return append(tags, name)
}

// describe renders a token for diagnostics.
func describe(t lexer.Token) string {
	switch t.Type {
	case lexer.EOF:
		return "end of file"
	case lexer.IDENT:
		return fmt.Sprintf("identifier %q", t.Value)
	case lexer.STRING:
		return fmt.Sprintf("string %q", t.Value)
	case lexer.NUMBER:
		return t.Lexeme
	case lexer.VARIABLE:
		return fmt.Sprintf("variable {{%s}}", t.Value)
	case lexer.TAG:
		return "@" + t.Value
	case lexer.LBRACE:
		return "'{'"
	case lexer.RBRACE:
		return "'}'"
	case lexer.COMMA:
		return "','"
	}
	return t.Type.String()
}
