package parser

import "github.com/verolang/vero/internal/diag"

// Feature is the root of one FEATURE block. A source file may hold several.
type Feature struct {
	Name      string
	Scenarios []*Scenario
	Position  diag.Position
}

// Scenario is one SCENARIO block: a named, optionally tagged statement list.
type Scenario struct {
	Name       string
	Tags       []string // unique, in source order, without '@'
	Statements []Statement
	Position   diag.Position
}

// Statement is one step in a scenario body. The concrete types below form a
// closed set; the generator switches over all of them.
type Statement interface {
	Pos() diag.Position
	stmt()
}

// Literal is a quoted string from source with escapes decoded. Any {{path}}
// interpolations remain in Text for the generator to substitute.
type Literal struct {
	Text     string
	Position diag.Position
}

// VarRef is a standalone {{path}} reference.
type VarRef struct {
	Path     string
	Position diag.Position
}

// Strategy says how a locator finds its element.
type Strategy int

const (
	Role Strategy = iota
	Text
	Label
	Placeholder
	TestID
	AltText
	Title
	CSS
	XPath
)

// strategyCount marks the end of the Strategy range for exhaustive walks.
const strategyCount = int(XPath) + 1

var strategyNames = [strategyCount]string{
	Role:        "role",
	Text:        "text",
	Label:       "label",
	Placeholder: "placeholder",
	TestID:      "testId",
	AltText:     "altText",
	Title:       "title",
	CSS:         "css",
	XPath:       "xpath",
}

func (s Strategy) String() string {
	if int(s) < 0 || int(s) >= strategyCount {
		return "unknown"
	}
	return strategyNames[s]
}

// Strategies returns every locator strategy, in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, strategyCount)
	for i := range out {
		out[i] = Strategy(i)
	}
	return out
}

// StrategyFromIdent resolves a strategy keyword as written in source. The
// match is case-sensitive: "css" is a strategy, "CSS" is not.
func StrategyFromIdent(word string) (Strategy, bool) {
	for i, name := range strategyNames {
		if name == word {
			return Strategy(i), true
		}
	}
	return 0, false
}

// Locator selects an element: a strategy plus its value, and for role
// locators an optional accessible name.
type Locator struct {
	Strategy Strategy
	Value    Literal
	Name     *Literal // role only
	Position diag.Position
}

// PredKind is an element predicate used by SEE/ASSERT and by conditions.
type PredKind int

const (
	PredVisible PredKind = iota
	PredHidden
	PredEnabled
	PredDisabled
	PredChecked
	PredHasText
	PredContains
)

// Predicate pairs a kind with its argument. Arg is meaningful only for
// PredHasText and PredContains.
type Predicate struct {
	Kind PredKind
	Arg  Literal
}

// Condition guards IF and WHILE. Element state, variable comparison, or a
// raw expression passed through to the generated code.
type Condition interface {
	Pos() diag.Position
	cond()
}

type ElementCond struct {
	Target   Locator
	Pred     Predicate
	Position diag.Position
}

// CompareOp is the operator of a variable comparison condition.
type CompareOp int

const (
	OpEquals CompareOp = iota
	OpNotEquals
	OpContains
)

type VarCond struct {
	Ref      VarRef
	Op       CompareOp
	Value    Literal
	Position diag.Position
}

type ExprCond struct {
	Expr     Literal
	Position diag.Position
}

func (c *ElementCond) Pos() diag.Position { return c.Position }
func (c *VarCond) Pos() diag.Position     { return c.Position }
func (c *ExprCond) Pos() diag.Position    { return c.Position }

func (c *ElementCond) cond() {}
func (c *VarCond) cond()     {}
func (c *ExprCond) cond()    {}

type NavigateStmt struct {
	URL      Literal
	Position diag.Position
}

type ClickStmt struct {
	Target   Locator
	Position diag.Position
}

type FillStmt struct {
	Target   Locator
	Value    Literal
	Position diag.Position
}

type SelectStmt struct {
	Target   Locator
	Option   Literal
	Position diag.Position
}

type CheckStmt struct {
	Target   Locator
	Position diag.Position
}

type UncheckStmt struct {
	Target   Locator
	Position diag.Position
}

type HoverStmt struct {
	Target   Locator
	Position diag.Position
}

// WaitForStmt is WAIT FOR <locator>: wait until the element is ready.
type WaitForStmt struct {
	Target   Locator
	Position diag.Position
}

// WaitStmt is WAIT <n> SECONDS. Seconds keeps the number as written.
type WaitStmt struct {
	Seconds  string
	Position diag.Position
}

// AssertStmt covers SEE and ASSERT; with no explicit predicate the parser
// fills in IS VISIBLE.
type AssertStmt struct {
	Target   Locator
	Pred     Predicate
	Position diag.Position
}

// SwitchFrameStmt enters the iframe selected by Target. Later locators
// resolve inside it; switching again without a reset nests.
type SwitchFrameStmt struct {
	Target   Locator
	Position diag.Position
}

// SwitchMainStmt returns locator resolution to the page, whatever the
// current frame depth.
type SwitchMainStmt struct {
	Position diag.Position
}

type PressStmt struct {
	Key      Literal
	Position diag.Position
}

type ScrollStmt struct {
	Down     bool
	Position diag.Position
}

type ScreenshotStmt struct {
	Name     Literal
	Position diag.Position
}

type SetStmt struct {
	Name     string
	Value    Literal
	Position diag.Position
}

// IfStmt holds one IF branch; an ELSE IF chain parses as an IfStmt nested as
// the sole Else statement.
type IfStmt struct {
	Cond     Condition
	Then     []Statement
	Else     []Statement
	Position diag.Position
}

type RepeatStmt struct {
	Count    string // whole number as written
	Body     []Statement
	Position diag.Position
}

// ForEachStmt iterates either inline Items or a runtime Collection; exactly
// one of the two is set.
type ForEachStmt struct {
	Var        string
	Items      []Literal
	Collection *VarRef
	Body       []Statement
	Position   diag.Position
}

type WhileStmt struct {
	Cond     Condition
	Body     []Statement
	Position diag.Position
}

type BreakStmt struct {
	Position diag.Position
}

type ContinueStmt struct {
	Position diag.Position
}

func (s *NavigateStmt) Pos() diag.Position    { return s.Position }
func (s *ClickStmt) Pos() diag.Position       { return s.Position }
func (s *FillStmt) Pos() diag.Position        { return s.Position }
func (s *SelectStmt) Pos() diag.Position      { return s.Position }
func (s *CheckStmt) Pos() diag.Position       { return s.Position }
func (s *UncheckStmt) Pos() diag.Position     { return s.Position }
func (s *HoverStmt) Pos() diag.Position       { return s.Position }
func (s *WaitForStmt) Pos() diag.Position     { return s.Position }
func (s *WaitStmt) Pos() diag.Position        { return s.Position }
func (s *AssertStmt) Pos() diag.Position      { return s.Position }
func (s *SwitchFrameStmt) Pos() diag.Position { return s.Position }
func (s *SwitchMainStmt) Pos() diag.Position  { return s.Position }
func (s *PressStmt) Pos() diag.Position       { return s.Position }
func (s *ScrollStmt) Pos() diag.Position      { return s.Position }
func (s *ScreenshotStmt) Pos() diag.Position  { return s.Position }
func (s *SetStmt) Pos() diag.Position         { return s.Position }
func (s *IfStmt) Pos() diag.Position          { return s.Position }
func (s *RepeatStmt) Pos() diag.Position      { return s.Position }
func (s *ForEachStmt) Pos() diag.Position     { return s.Position }
func (s *WhileStmt) Pos() diag.Position       { return s.Position }
func (s *BreakStmt) Pos() diag.Position       { return s.Position }
func (s *ContinueStmt) Pos() diag.Position    { return s.Position }

func (s *NavigateStmt) stmt()    {}
func (s *ClickStmt) stmt()       {}
func (s *FillStmt) stmt()        {}
func (s *SelectStmt) stmt()      {}
func (s *CheckStmt) stmt()       {}
func (s *UncheckStmt) stmt()     {}
func (s *HoverStmt) stmt()       {}
func (s *WaitForStmt) stmt()     {}
func (s *WaitStmt) stmt()        {}
func (s *AssertStmt) stmt()      {}
func (s *SwitchFrameStmt) stmt() {}
func (s *SwitchMainStmt) stmt()  {}
func (s *PressStmt) stmt()       {}
func (s *ScrollStmt) stmt()      {}
func (s *ScreenshotStmt) stmt()  {}
func (s *SetStmt) stmt()         {}
func (s *IfStmt) stmt()          {}
func (s *RepeatStmt) stmt()      {}
func (s *ForEachStmt) stmt()     {}
func (s *WhileStmt) stmt()       {}
func (s *BreakStmt) stmt()       {}
func (s *ContinueStmt) stmt()    {}

// Walk calls fn for every statement in stmts, descending into control-flow
// bodies in source order.
func Walk(stmts []Statement, fn func(Statement)) {
	for _, st := range stmts {
		fn(st)
		switch s := st.(type) {
		case *IfStmt:
			Walk(s.Then, fn)
			Walk(s.Else, fn)
		case *RepeatStmt:
			Walk(s.Body, fn)
		case *ForEachStmt:
			Walk(s.Body, fn)
		case *WhileStmt:
			Walk(s.Body, fn)
		}
	}
}
