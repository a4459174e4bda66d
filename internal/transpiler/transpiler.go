// Package transpiler lowers the Vero AST into Playwright Test source. Each
// feature becomes one TypeScript spec file and each scenario one test, with
// statement order preserved. Generation is pure: the AST is never mutated,
// and the same input always yields the same output.
package transpiler

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/verolang/vero/internal/diag"
	"github.com/verolang/vero/internal/parser"
)

// Options configures generation. Both fields are optional; the CLI fills
// them from vero.yaml.
type Options struct {
	// BaseURL emits a test.use({ baseURL }) block per file, enabling
	// relative NAVIGATE targets.
	BaseURL string
	// Vars seeds the runtime variable table of every scenario that uses one.
	Vars map[string]string
}

// Transpile generates one spec file per feature, keyed by feature name.
// Diagnostics cover generation defects only (an unmapped statement or
// strategy) plus duplicate feature names; bad source text was the earlier
// stages' business.
func Transpile(features []*parser.Feature, opts Options) (map[string]string, []diag.Diagnostic) {
	g := &generator{opts: opts}
	tests := make(map[string]string, len(features))
	for _, f := range features {
		if _, dup := tests[f.Name]; dup {
			g.errorf(f.Position, "duplicate feature name %q", f.Name)
			continue
		}
		tests[f.Name] = g.feature(f)
	}
	return tests, g.diags
}

type generator struct {
	opts  Options
	diags []diag.Diagnostic

	// usedVars flips when the current scenario body emits a vars[...]
	// lookup, so the declaration is only written where needed. Reset per
	// scenario.
	usedVars bool
}

// genCtx is the generation-time statement context, passed by value so nested
// transpiles never share state. inFrame follows source order, into and out
// of bodies, mirroring the runtime root variable. loop is the loop nesting
// depth and scopes to the body it names.
type genCtx struct {
	inFrame bool
	loop    int
}

func (g *generator) feature(f *parser.Feature) string {
	frames := false
	for _, s := range f.Scenarios {
		if usesFrames(s.Statements) {
			frames = true
			break
		}
	}

	var e emitter
	e.line("import { test, expect } from '@playwright/test';")
	if frames {
		e.line("import type { Page, FrameLocator } from '@playwright/test';")
	}
	e.blank()
	if g.opts.BaseURL != "" {
		e.line("test.use({ baseURL: " + tsString(g.opts.BaseURL) + " });")
		e.blank()
	}

	e.line("test.describe(" + tsString(f.Name) + ", () => {")
	e.indent++
	for i, s := range f.Scenarios {
		if i > 0 {
			e.blank()
		}
		g.scenario(&e, s)
	}
	e.indent--
	e.line("});")
	return e.String()
}

func (g *generator) scenario(e *emitter, s *parser.Scenario) {
	title := s.Name
	for _, tag := range s.Tags {
		title += " @" + tag
	}
	e.line("test(" + tsString(title) + ", async ({ page }) => {")
	e.indent++

	// The body goes to a sub-emitter first so the root/vars declarations
	// can be prepended only when the statements actually need them.
	body := &emitter{indent: e.indent}
	g.usedVars = false
	g.statements(body, s.Statements, genCtx{})

	if usesFrames(s.Statements) {
		e.line("let root: Page | FrameLocator = page;")
	}
	if g.usedVars {
		e.line("const vars: Record<string, any> = {};")
		seeds := make([]string, 0, len(g.opts.Vars))
		for k := range g.opts.Vars {
			seeds = append(seeds, k)
		}
		sort.Strings(seeds)
		for _, k := range seeds {
			e.line("vars[" + tsString(k) + "] = " + tsString(g.opts.Vars[k]) + ";")
		}
	}
	e.append(body)

	e.indent--
	e.line("});")
}

func (g *generator) statements(e *emitter, stmts []parser.Statement, ctx genCtx) genCtx {
	for _, st := range stmts {
		ctx = g.statement(e, st, ctx)
	}
	return ctx
}

// body generates an indented block body. Only the frame context survives the
// block; loop depth stays inside it.
func (g *generator) body(e *emitter, stmts []parser.Statement, ctx genCtx) genCtx {
	e.indent++
	after := g.statements(e, stmts, ctx)
	e.indent--
	ctx.inFrame = after.inFrame
	return ctx
}

func (g *generator) statement(e *emitter, st parser.Statement, ctx genCtx) genCtx {
	switch s := st.(type) {
	case *parser.NavigateStmt:
		e.line("await page.goto(" + g.literal(s.URL) + ");")

	case *parser.ClickStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".click();")
		}

	case *parser.FillStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".fill(" + g.literal(s.Value) + ");")
		}

	case *parser.SelectStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".selectOption(" + g.literal(s.Option) + ");")
		}

	case *parser.CheckStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".check();")
		}

	case *parser.UncheckStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".uncheck();")
		}

	case *parser.HoverStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".hover();")
		}

	case *parser.WaitForStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("await " + call + ".waitFor();")
		}

	case *parser.WaitStmt:
		e.line(fmt.Sprintf("await page.waitForTimeout(%d);", waitMillis(s.Seconds)))

	case *parser.AssertStmt:
		if call, ok := g.assertion(s, ctx); ok {
			e.line("await " + call + ";")
		}

	case *parser.SwitchFrameStmt:
		if call, ok := g.locator(s.Target, ctx); ok {
			e.line("root = " + call + ".contentFrame();")
			ctx.inFrame = true
		}

	case *parser.SwitchMainStmt:
		// Absolute reset: back to the page no matter how deep the
		// frame chain got.
		e.line("root = page;")
		ctx.inFrame = false

	case *parser.PressStmt:
		e.line("await page.keyboard.press(" + g.literal(s.Key) + ");")

	case *parser.ScrollStmt:
		if s.Down {
			e.line("await page.mouse.wheel(0, 600);")
		} else {
			e.line("await page.mouse.wheel(0, -600);")
		}

	case *parser.ScreenshotStmt:
		e.line("await page.screenshot({ path: " + g.literal(screenshotPath(s.Name)) + " });")

	case *parser.SetStmt:
		g.usedVars = true
		e.line("vars[" + tsString(s.Name) + "] = " + g.literal(s.Value) + ";")

	case *parser.IfStmt:
		ctx = g.ifChain(e, s, ctx)

	case *parser.RepeatStmt:
		v := loopVar(ctx.loop)
		e.line(fmt.Sprintf("for (let %s = 0; %s < %s; %s++) {", v, v, s.Count, v))
		inner := ctx
		inner.loop++
		after := g.body(e, s.Body, inner)
		e.line("}")
		ctx.inFrame = after.inFrame

	case *parser.ForEachStmt:
		g.usedVars = true
		v := loopVar(ctx.loop)
		e.line("for (const " + v + " of " + g.collection(s) + ") {")
		e.indent++
		e.line("vars[" + tsString(s.Var) + "] = " + v + ";")
		inner := ctx
		inner.loop++
		after := g.statements(e, s.Body, inner)
		e.indent--
		e.line("}")
		ctx.inFrame = after.inFrame

	case *parser.WhileStmt:
		e.line("while (" + g.condition(s.Cond, ctx) + ") {")
		ctx = g.body(e, s.Body, ctx)
		e.line("}")

	case *parser.BreakStmt:
		e.line("break;")

	case *parser.ContinueStmt:
		e.line("continue;")

	default:
		g.errorf(st.Pos(), "no generation rule for statement %T", st)
	}
	return ctx
}

// ifChain re-sugars nested else-if parses into a flat chain.
func (g *generator) ifChain(e *emitter, s *parser.IfStmt, ctx genCtx) genCtx {
	e.line("if (" + g.condition(s.Cond, ctx) + ") {")
	ctx = g.body(e, s.Then, ctx)
	for len(s.Else) == 1 {
		elif, ok := s.Else[0].(*parser.IfStmt)
		if !ok {
			break
		}
		e.line("} else if (" + g.condition(elif.Cond, ctx) + ") {")
		ctx = g.body(e, elif.Then, ctx)
		s = elif
	}
	if len(s.Else) > 0 {
		e.line("} else {")
		ctx = g.body(e, s.Else, ctx)
	}
	e.line("}")
	return ctx
}

func (g *generator) assertion(s *parser.AssertStmt, ctx genCtx) (string, bool) {
	call, ok := g.locator(s.Target, ctx)
	if !ok {
		return "", false
	}
	switch s.Pred.Kind {
	case parser.PredVisible:
		return "expect(" + call + ").toBeVisible()", true
	case parser.PredHidden:
		return "expect(" + call + ").toBeHidden()", true
	case parser.PredEnabled:
		return "expect(" + call + ").toBeEnabled()", true
	case parser.PredDisabled:
		return "expect(" + call + ").toBeDisabled()", true
	case parser.PredChecked:
		return "expect(" + call + ").toBeChecked()", true
	case parser.PredHasText:
		return "expect(" + call + ").toHaveText(" + g.literal(s.Pred.Arg) + ")", true
	case parser.PredContains:
		return "expect(" + call + ").toContainText(" + g.literal(s.Pred.Arg) + ")", true
	}
	g.errorf(s.Pos(), "no generation rule for predicate %d", s.Pred.Kind)
	return "", false
}

func (g *generator) condition(c parser.Condition, ctx genCtx) string {
	switch v := c.(type) {
	case *parser.ElementCond:
		call, ok := g.locator(v.Target, ctx)
		if !ok {
			return "false"
		}
		switch v.Pred.Kind {
		case parser.PredVisible:
			return "await " + call + ".isVisible()"
		case parser.PredHidden:
			return "await " + call + ".isHidden()"
		case parser.PredEnabled:
			return "await " + call + ".isEnabled()"
		case parser.PredDisabled:
			return "await " + call + ".isDisabled()"
		case parser.PredChecked:
			return "await " + call + ".isChecked()"
		case parser.PredHasText, parser.PredContains:
			return "((await " + call + ".textContent()) ?? '').includes(" + g.literal(v.Pred.Arg) + ")"
		}

	case *parser.VarCond:
		g.usedVars = true
		ref := "vars[" + tsString(v.Ref.Path) + "]"
		switch v.Op {
		case parser.OpEquals:
			return ref + " === " + g.literal(v.Value)
		case parser.OpNotEquals:
			return ref + " !== " + g.literal(v.Value)
		case parser.OpContains:
			return "String(" + ref + ").includes(" + g.literal(v.Value) + ")"
		}

	case *parser.ExprCond:
		return "(" + g.subst(v.Expr.Text) + ")"
	}

	g.errorf(c.Pos(), "no generation rule for condition %T", c)
	return "false"
}

func (g *generator) collection(s *parser.ForEachStmt) string {
	if s.Collection != nil {
		g.usedVars = true
		return "vars[" + tsString(s.Collection.Path) + "]"
	}
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = g.literal(it)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (g *generator) errorf(pos diag.Position, format string, args ...any) {
	g.diags = append(g.diags, diag.Errorf(pos, format, args...))
}

func usesFrames(stmts []parser.Statement) bool {
	found := false
	parser.Walk(stmts, func(st parser.Statement) {
		switch st.(type) {
		case *parser.SwitchFrameStmt, *parser.SwitchMainStmt:
			found = true
		}
	})
	return found
}

func screenshotPath(name parser.Literal) parser.Literal {
	if !strings.HasSuffix(name.Text, ".png") {
		name.Text += ".png"
	}
	return name
}

func waitMillis(seconds string) int {
	f, _ := strconv.ParseFloat(seconds, 64)
	return int(math.Round(f * 1000))
}

// loopVar names the generated loop binding at the given nesting depth:
// i, j, k, then i3, i4, ...
func loopVar(depth int) string {
	switch depth {
	case 0:
		return "i"
	case 1:
		return "j"
	case 2:
		return "k"
	}
	return fmt.Sprintf("i%d", depth)
}

var interpPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_.]+)\}\}`)

// literal renders a Vero string literal as a TypeScript expression. Literals
// containing {{path}} references become template literals with runtime
// lookups; plain literals stay single-quoted.
func (g *generator) literal(lit parser.Literal) string {
	matches := interpPattern.FindAllStringSubmatchIndex(lit.Text, -1)
	if len(matches) == 0 {
		return tsString(lit.Text)
	}
	g.usedVars = true
	var b strings.Builder
	b.WriteByte('`')
	last := 0
	for _, m := range matches {
		b.WriteString(tsTemplate(lit.Text[last:m[0]]))
		b.WriteString("${vars[" + tsString(lit.Text[m[2]:m[3]]) + "]}")
		last = m[1]
	}
	b.WriteString(tsTemplate(lit.Text[last:]))
	b.WriteByte('`')
	return b.String()
}

// subst rewrites {{path}} references inside a raw expression to runtime
// lookups, leaving the rest of the expression untouched.
func (g *generator) subst(raw string) string {
	return interpPattern.ReplaceAllStringFunc(raw, func(m string) string {
		g.usedVars = true
		return "vars[" + tsString(m[2:len(m)-2]) + "]"
	})
}

func tsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func tsTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "${", "\\${")
	return s
}

type emitter struct {
	buf    strings.Builder
	indent int
}

func (e *emitter) line(s string) {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("  ")
	}
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
}

func (e *emitter) blank() {
	e.buf.WriteByte('\n')
}

func (e *emitter) append(other *emitter) {
	e.buf.WriteString(other.buf.String())
}

func (e *emitter) String() string {
	return e.buf.String()
}
