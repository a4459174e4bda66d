package transpiler

import "github.com/verolang/vero/internal/parser"

// locator renders a locator expression as a call on the active context:
// page at the top level, root inside a frame. The mapping is total over the
// strategy set; a gap is a generation defect reported as a diagnostic, never
// a silent fallback.
func (g *generator) locator(loc parser.Locator, ctx genCtx) (string, bool) {
	base := "page"
	if ctx.inFrame {
		base = "root"
	}

	switch loc.Strategy {
	case parser.Role:
		if loc.Name != nil {
			return base + ".getByRole(" + g.literal(loc.Value) + ", { name: " + g.literal(*loc.Name) + " })", true
		}
		return base + ".getByRole(" + g.literal(loc.Value) + ")", true
	case parser.Text:
		return base + ".getByText(" + g.literal(loc.Value) + ")", true
	case parser.Label:
		return base + ".getByLabel(" + g.literal(loc.Value) + ")", true
	case parser.Placeholder:
		return base + ".getByPlaceholder(" + g.literal(loc.Value) + ")", true
	case parser.TestID:
		return base + ".getByTestId(" + g.literal(loc.Value) + ")", true
	case parser.AltText:
		return base + ".getByAltText(" + g.literal(loc.Value) + ")", true
	case parser.Title:
		return base + ".getByTitle(" + g.literal(loc.Value) + ")", true
	case parser.CSS:
		return base + ".locator(" + g.literal(loc.Value) + ")", true
	case parser.XPath:
		v := loc.Value
		v.Text = "xpath=" + v.Text
		return base + ".locator(" + g.literal(v) + ")", true
	}

	g.errorf(loc.Position, "no generation rule for locator strategy %q", loc.Strategy)
	return "", false
}
