// Package diag holds the diagnostic value types shared by every stage of the
// Vero toolchain. Problems in source are reported as values, never as Go
// errors or panics, so a single run can surface many of them at once.
package diag

import "fmt"

// Position is a location in Vero source. Line and Col are 1-based and count
// bytes within the line; Offset is the 0-based byte offset from the start of
// the source.
type Position struct {
	Line   int
	Col    int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Severity classifies a diagnostic. Every diagnostic the toolchain emits
// today is an Error; the type exists so the reporting surface does not change
// if warnings arrive later.
type Severity int

const (
	Error Severity = iota
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "unknown"
}

// Diagnostic is one problem found in Vero source.
type Diagnostic struct {
	Pos      Position
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Errorf builds an error diagnostic at pos.
func Errorf(pos Position, format string, args ...any) Diagnostic {
	return Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...), Severity: Error}
}
