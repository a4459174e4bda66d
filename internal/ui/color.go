package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "ok":
		return okStyle
	case "err":
		return errStyle
	}
	return faintStyle
}

// OkLine marks a file that compiled clean.
func OkLine(w io.Writer, path string) {
	fmt.Fprintln(w, okStyle.Render("ok")+"   "+path)
}

// NewLine marks a file compiled for the first time.
func NewLine(w io.Writer, path string) {
	fmt.Fprintln(w, okStyle.Render("new")+"  "+path)
}

// ErrLine marks a file whose compilation produced diagnostics.
func ErrLine(w io.Writer, path string) {
	fmt.Fprintln(w, errStyle.Render("err")+"  "+path)
}

// DiagLine renders one diagnostic as `err  file:line:col  message`.
func DiagLine(w io.Writer, file string, line, col int, message string) {
	loc := fmt.Sprintf("%s:%d:%d", file, line, col)
	fmt.Fprintln(w, errStyle.Render("err")+"  "+faintStyle.Render(loc)+"  "+message)
}

// Excerpt prints the offending source line with a caret under the column.
func Excerpt(w io.Writer, lineNo int, src string, col int) {
	if col < 1 {
		col = 1
	}
	gutter := fmt.Sprintf("%4d", lineNo)
	fmt.Fprintln(w, faintStyle.Render(gutter+" | ")+src)
	fmt.Fprintln(w, strings.Repeat(" ", len(gutter)+3+col-1)+errStyle.Render("^"))
}

// CompileSummary is the last line of `vero compile`.
func CompileSummary(w io.Writer, files, features, errors int) {
	line := fmt.Sprintf("compiled %d files, %d features", files, features)
	if errors > 0 {
		line += ", " + errStyle.Render(fmt.Sprintf("%d errors", errors))
	}
	fmt.Fprintln(w, line)
}

// CheckSummary is the last line of `vero check`.
func CheckSummary(w io.Writer, files, problems int) {
	if problems == 0 {
		fmt.Fprintf(w, "checked %d files, no problems\n", files)
		return
	}
	fmt.Fprintf(w, "checked %d files, %s\n", files, errStyle.Render(fmt.Sprintf("%d problems", problems)))
}

// ListRow renders one `vero list` line with aligned columns.
func ListRow(w io.Writer, feature, file string, scenarios int, status string, featureWidth, fileWidth int) {
	fmt.Fprintf(w, "%-*s  %-*s  %2d  %s\n",
		featureWidth, feature, fileWidth, file, scenarios, statusStyle(status).Render(status))
}

// ShowHeader opens the `vero show` output.
func ShowHeader(w io.Writer, feature, file, status, compiledAt string) {
	fmt.Fprintln(w, headerStyle.Render(feature)+"  "+faintStyle.Render(file))
	fmt.Fprintln(w, "status: "+statusStyle(status).Render(status)+faintStyle.Render("  compiled "+compiledAt))
}

// Code prints a generated source block indented under the surrounding
// report.
func Code(w io.Writer, code string) {
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		fmt.Fprintln(w, "  "+line)
	}
}

// TokenLine renders one `vero tokens` line.
func TokenLine(w io.Writer, pos, kind, lexeme string) {
	fmt.Fprintf(w, "%s  %-12s %s\n", faintStyle.Render(fmt.Sprintf("%8s", pos)), kind, lexeme)
}
