// Package vero ties the compiler stages together behind one call. The three
// diagnostic lists stay independent: a caller deciding whether generated
// output is trustworthy checks all of them, while an editor showing inline
// problems may care only about the first two.
package vero

import (
	"github.com/verolang/vero/internal/diag"
	"github.com/verolang/vero/internal/lexer"
	"github.com/verolang/vero/internal/parser"
	"github.com/verolang/vero/internal/transpiler"
)

// Options configures compilation; zero value works.
type Options struct {
	BaseURL string
	Vars    map[string]string
}

// Result holds everything the pipeline produced for one source string.
type Result struct {
	Features []*parser.Feature
	Tests    map[string]string

	Lex   []diag.Diagnostic
	Parse []diag.Diagnostic
	Gen   []diag.Diagnostic
}

// Compile runs lex, parse, and generation over src. Later stages run even
// when earlier ones reported problems, so interactive callers always get
// best-effort output; gating final output on Clean is the caller's job.
func Compile(src string, opts Options) *Result {
	r := &Result{}
	toks, lexDiags := lexer.Tokenize(src)
	r.Lex = lexDiags
	r.Features, r.Parse = parser.Parse(toks)
	r.Tests, r.Gen = transpiler.Transpile(r.Features, transpiler.Options{
		BaseURL: opts.BaseURL,
		Vars:    opts.Vars,
	})
	return r
}

// Clean reports whether every stage finished without diagnostics.
func (r *Result) Clean() bool {
	return len(r.Lex) == 0 && len(r.Parse) == 0 && len(r.Gen) == 0
}

// AllDiagnostics concatenates the stage lists in pipeline order.
func (r *Result) AllDiagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(r.Lex)+len(r.Parse)+len(r.Gen))
	out = append(out, r.Lex...)
	out = append(out, r.Parse...)
	out = append(out, r.Gen...)
	return out
}

// StagedDiagnostic labels a diagnostic with the stage that produced it.
type StagedDiagnostic struct {
	Stage string // "lex", "parse" or "gen"
	diag.Diagnostic
}

// Staged returns all diagnostics labeled by stage, in pipeline order.
func (r *Result) Staged() []StagedDiagnostic {
	out := make([]StagedDiagnostic, 0, len(r.Lex)+len(r.Parse)+len(r.Gen))
	for _, d := range r.Lex {
		out = append(out, StagedDiagnostic{Stage: "lex", Diagnostic: d})
	}
	for _, d := range r.Parse {
		out = append(out, StagedDiagnostic{Stage: "parse", Diagnostic: d})
	}
	for _, d := range r.Gen {
		out = append(out, StagedDiagnostic{Stage: "gen", Diagnostic: d})
	}
	return out
}
