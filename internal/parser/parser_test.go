package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verolang/vero/internal/diag"
	"github.com/verolang/vero/internal/lexer"
)

func parse(t *testing.T, src string) ([]*Feature, []diag.Diagnostic) {
	t.Helper()
	toks, lexDiags := lexer.Tokenize(src)
	require.Empty(t, lexDiags, "unexpected lex diagnostics")
	return Parse(toks)
}

func parseClean(t *testing.T, src string) []*Feature {
	t.Helper()
	features, diags := parse(t, src)
	require.Empty(t, diags)
	return features
}

func TestParse_SingleScenario(t *testing.T) {
	features := parseClean(t, `FEATURE Login {
  SCENARIO "User logs in" {
    NAVIGATE TO "https://example.com/login"
    FILL label "Email" WITH "admin@test.com"
    CLICK role "button" name "Sign In"
  }
}`)

	require.Len(t, features, 1)
	assert.Equal(t, "Login", features[0].Name)
	require.Len(t, features[0].Scenarios, 1)

	s := features[0].Scenarios[0]
	assert.Equal(t, "User logs in", s.Name)
	require.Len(t, s.Statements, 3)

	nav, ok := s.Statements[0].(*NavigateStmt)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/login", nav.URL.Text)

	fill, ok := s.Statements[1].(*FillStmt)
	require.True(t, ok)
	assert.Equal(t, Label, fill.Target.Strategy)
	assert.Equal(t, "Email", fill.Target.Value.Text)
	assert.Equal(t, "admin@test.com", fill.Value.Text)

	click, ok := s.Statements[2].(*ClickStmt)
	require.True(t, ok)
	assert.Equal(t, Role, click.Target.Strategy)
	require.NotNil(t, click.Target.Name)
	assert.Equal(t, "Sign In", click.Target.Name.Text)
}

func TestParse_BareIdentifierNames(t *testing.T) {
	features := parseClean(t, `FEATURE FrameTest {
  SCENARIO IframeInteraction {
    OPEN "https://example.com"
  }
}`)

	require.Len(t, features, 1)
	assert.Equal(t, "FrameTest", features[0].Name)
	assert.Equal(t, "IframeInteraction", features[0].Scenarios[0].Name)
}

func TestParse_MultipleFeatures(t *testing.T) {
	features := parseClean(t, `FEATURE One {
  SCENARIO "a" { CLICK css "#a" }
}
FEATURE Two {
  SCENARIO "b" { CLICK css "#b" }
}`)

	require.Len(t, features, 2)
	assert.Equal(t, "One", features[0].Name)
	assert.Equal(t, "Two", features[1].Name)
}

func TestParse_ScenarioTags(t *testing.T) {
	features := parseClean(t, `FEATURE Login {
  SCENARIO "ok" @smoke @regression @smoke {
    CLICK css "#go"
  }
}`)

	// Duplicate tags collapse, order preserved.
	assert.Equal(t, []string{"smoke", "regression"}, features[0].Scenarios[0].Tags)
}

func TestParse_AllLocatorStrategies(t *testing.T) {
	features := parseClean(t, `FEATURE Locators {
  SCENARIO "all" {
    CLICK role "button"
    CLICK text "Save"
    CLICK label "Email"
    CLICK placeholder "Search"
    CLICK testId "submit-btn"
    CLICK altText "Logo"
    CLICK title "Close"
    CLICK css "#login > .btn"
    CLICK xpath "//button[1]"
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, len(Strategies()))
	for i, want := range Strategies() {
		click, ok := stmts[i].(*ClickStmt)
		require.True(t, ok)
		assert.Equal(t, want, click.Target.Strategy, "statement %d", i)
	}
}

func TestParse_UnknownStrategy(t *testing.T) {
	_, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    CLICK id "#x"
  }
}`)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `unknown locator strategy "id"`)
}

func TestParse_StrategyIsCaseSensitive(t *testing.T) {
	_, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    CLICK CSS "#x"
  }
}`)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `unknown locator strategy "CSS"`)
}

func TestParse_NameClauseOnlyForRole(t *testing.T) {
	_, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    CLICK css "#x" name "Close"
  }
}`)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "name clause is only valid on role locators")
}

func TestParse_AssertPredicates(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    SEE css "#banner"
    ASSERT css "#banner" IS VISIBLE
    SEE css "#spinner" IS HIDDEN
    SEE css "#submit" IS ENABLED
    SEE css "#submit" IS DISABLED
    SEE css "#tos" IS CHECKED
    SEE css "#title" HAS TEXT "Welcome"
    SEE css "#body" CONTAINS "logged in"
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 8)

	want := []PredKind{
		PredVisible, PredVisible, PredHidden, PredEnabled,
		PredDisabled, PredChecked, PredHasText, PredContains,
	}
	for i, kind := range want {
		as, ok := stmts[i].(*AssertStmt)
		require.True(t, ok, "statement %d", i)
		assert.Equal(t, kind, as.Pred.Kind, "statement %d", i)
	}
	assert.Equal(t, "Welcome", stmts[6].(*AssertStmt).Pred.Arg.Text)
}

func TestParse_FrameStatements(t *testing.T) {
	features := parseClean(t, `FEATURE FrameTest {
  SCENARIO IframeInteraction {
    SWITCH TO FRAME css "#paymentFrame"
    OPEN "https://example.com"
    SWITCH TO MAIN FRAME
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 3)

	sw, ok := stmts[0].(*SwitchFrameStmt)
	require.True(t, ok)
	assert.Equal(t, CSS, sw.Target.Strategy)
	assert.Equal(t, "#paymentFrame", sw.Target.Value.Text)

	_, ok = stmts[1].(*NavigateStmt)
	require.True(t, ok)
	_, ok = stmts[2].(*SwitchMainStmt)
	require.True(t, ok)
}

func TestParse_WaitForms(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    WAIT FOR css "#spinner"
    WAIT 3 SECONDS
    WAIT 1.5 SECONDS
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	_, ok := stmts[0].(*WaitForStmt)
	require.True(t, ok)
	assert.Equal(t, "3", stmts[1].(*WaitStmt).Seconds)
	assert.Equal(t, "1.5", stmts[2].(*WaitStmt).Seconds)
}

func TestParse_ActionStatements(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    SELECT label "Country" OPTION "Iceland"
    CHECK css "#tos"
    UNCHECK css "#spam"
    HOVER OVER text "Menu"
    PRESS "Enter"
    SCROLL DOWN
    SCROLL UP
    SCREENSHOT AS "cart-page"
    SET username TO "admin"
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 9)

	sel := stmts[0].(*SelectStmt)
	assert.Equal(t, "Iceland", sel.Option.Text)
	assert.Equal(t, "Enter", stmts[4].(*PressStmt).Key.Text)
	assert.True(t, stmts[5].(*ScrollStmt).Down)
	assert.False(t, stmts[6].(*ScrollStmt).Down)
	assert.Equal(t, "cart-page", stmts[7].(*ScreenshotStmt).Name.Text)
	set := stmts[8].(*SetStmt)
	assert.Equal(t, "username", set.Name)
	assert.Equal(t, "admin", set.Value.Text)
}

func TestParse_IfElseChain(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    IF css "#banner" IS VISIBLE {
      CLICK css "#dismiss"
    } ELSE IF {{mode}} EQUALS "mobile" {
      CLICK css "#menu"
    } ELSE {
      SCROLL DOWN
    }
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 1)

	top := stmts[0].(*IfStmt)
	ec, ok := top.Cond.(*ElementCond)
	require.True(t, ok)
	assert.Equal(t, PredVisible, ec.Pred.Kind)
	require.Len(t, top.Then, 1)
	require.Len(t, top.Else, 1)

	elif, ok := top.Else[0].(*IfStmt)
	require.True(t, ok)
	vc, ok := elif.Cond.(*VarCond)
	require.True(t, ok)
	assert.Equal(t, "mode", vc.Ref.Path)
	assert.Equal(t, OpEquals, vc.Op)
	assert.Equal(t, "mobile", vc.Value.Text)
	require.Len(t, elif.Else, 1)
	_, ok = elif.Else[0].(*ScrollStmt)
	require.True(t, ok)
}

func TestParse_ConditionForms(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    IF {{count}} NOT EQUALS "0" { BREAK }
    IF {{body}} CONTAINS "error" { CONTINUE }
    WHILE "window.scrollY < 4000" { SCROLL DOWN }
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 3)

	vc := stmts[0].(*IfStmt).Cond.(*VarCond)
	assert.Equal(t, OpNotEquals, vc.Op)
	vc = stmts[1].(*IfStmt).Cond.(*VarCond)
	assert.Equal(t, OpContains, vc.Op)

	wh := stmts[2].(*WhileStmt)
	expr, ok := wh.Cond.(*ExprCond)
	require.True(t, ok)
	assert.Equal(t, "window.scrollY < 4000", expr.Expr.Text)
}

func TestParse_Loops(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    REPEAT 3 TIMES {
      CLICK css "#inc"
    }
    FOR EACH name IN "alice", "bob" {
      FILL css "#who" WITH "{{name}}"
    }
    FOR EACH u IN {{users}} {
      CLICK text "{{u}}"
    }
  }
}`)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 3)

	rep := stmts[0].(*RepeatStmt)
	assert.Equal(t, "3", rep.Count)
	require.Len(t, rep.Body, 1)

	fe := stmts[1].(*ForEachStmt)
	assert.Equal(t, "name", fe.Var)
	require.Len(t, fe.Items, 2)
	assert.Equal(t, "alice", fe.Items[0].Text)
	assert.Equal(t, "bob", fe.Items[1].Text)
	assert.Nil(t, fe.Collection)

	fv := stmts[2].(*ForEachStmt)
	assert.Empty(t, fv.Items)
	require.NotNil(t, fv.Collection)
	assert.Equal(t, "users", fv.Collection.Path)
}

func TestParse_RepeatCountMustBeWhole(t *testing.T) {
	_, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    REPEAT 2.5 TIMES { CLICK css "#x" }
  }
}`)

	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "whole number")
}

func TestParse_RecoverySkipsToNextStatement(t *testing.T) {
	features, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    CLICK css "#ok-before"
    FILL css "#broken"
    CLICK css "#ok-after"
  }
}`)

	// The malformed FILL yields one diagnostic; its neighbors survive.
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "expected WITH")
	assert.Equal(t, 5, diags[0].Pos.Line)

	stmts := features[0].Scenarios[0].Statements
	require.Len(t, stmts, 2)
	assert.Equal(t, "#ok-before", stmts[0].(*ClickStmt).Target.Value.Text)
	assert.Equal(t, "#ok-after", stmts[1].(*ClickStmt).Target.Value.Text)
}

func TestParse_MultipleIndependentErrors(t *testing.T) {
	_, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    FILL css "#a"
    HOVER css "#b"
    SELECT css "#c" "x"
  }
}`)

	require.Len(t, diags, 3)
	assert.Contains(t, diags[0].Message, "expected WITH")
	assert.Contains(t, diags[1].Message, "expected OVER")
	assert.Contains(t, diags[2].Message, "expected OPTION")
}

func TestParse_ErrorInOneScenarioSparesTheNext(t *testing.T) {
	features, diags := parse(t, `FEATURE F {
  SCENARIO "bad" {
    CLICK
  }
  SCENARIO "good" {
    CLICK css "#fine"
  }
}`)

	require.NotEmpty(t, diags)
	require.Len(t, features, 1)
	require.Len(t, features[0].Scenarios, 2)
	assert.Equal(t, "good", features[0].Scenarios[1].Name)
	assert.Len(t, features[0].Scenarios[1].Statements, 1)
}

func TestParse_UnexpectedEnd(t *testing.T) {
	_, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    CLICK css "#x"
    END
  }
}`)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unexpected END")
}

func TestParse_UnclosedScenario(t *testing.T) {
	features, diags := parse(t, `FEATURE F {
  SCENARIO "s" {
    CLICK css "#x"
`)

	require.NotEmpty(t, diags)
	// The statement before the missing brace is kept.
	require.Len(t, features, 1)
	require.Len(t, features[0].Scenarios, 1)
	assert.Len(t, features[0].Scenarios[0].Statements, 1)
}

func TestParse_MissingBraceBeforeNextScenario(t *testing.T) {
	features, diags := parse(t, `FEATURE F {
  SCENARIO "first" {
    CLICK css "#a"
  SCENARIO "second" {
    CLICK css "#b"
  }
}`)

	require.NotEmpty(t, diags)
	require.Len(t, features, 1)
	require.Len(t, features[0].Scenarios, 2)
	assert.Equal(t, "second", features[0].Scenarios[1].Name)
}

func TestParse_TextOutsideFeature(t *testing.T) {
	features, diags := parse(t, `CLICK css "#x"
FEATURE F {
  SCENARIO "s" { CLICK css "#ok" }
}`)

	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "expected FEATURE")
	require.Len(t, features, 1)
	assert.Equal(t, "F", features[0].Name)
}

func TestParse_EmptyInput(t *testing.T) {
	features, diags := parse(t, "")
	assert.Empty(t, features)
	assert.Empty(t, diags)
}

func TestParse_EmptyTokenSlice(t *testing.T) {
	features, diags := Parse(nil)
	assert.Empty(t, features)
	assert.Empty(t, diags)
}

func TestParse_CommentsIgnored(t *testing.T) {
	features := parseClean(t, `# checkout flows
FEATURE F {
  # happy path
  SCENARIO "s" {
    CLICK css "#x" # submit
  }
}`)

	assert.Len(t, features[0].Scenarios[0].Statements, 1)
}

func TestParse_PositionsPointAtStatements(t *testing.T) {
	features := parseClean(t, `FEATURE F {
  SCENARIO "s" {
    CLICK css "#x"
  }
}`)

	click := features[0].Scenarios[0].Statements[0]
	assert.Equal(t, 3, click.Pos().Line)
	assert.Equal(t, 5, click.Pos().Col)
}
