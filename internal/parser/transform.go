package parser

// FeatureOutline is the flattened summary of a feature, the shape the
// compile catalog records.
type FeatureOutline struct {
	Name      string
	Scenarios []ScenarioOutline
	Line      int // 1-based line of the FEATURE keyword
}

// ScenarioOutline summarizes one scenario.
type ScenarioOutline struct {
	Name       string
	Tags       []string
	Statements int // total statement count, including nested bodies
	Line       int // 1-based line of the SCENARIO keyword
}

// Outline flattens parsed features into summaries.
func Outline(features []*Feature) []FeatureOutline {
	out := make([]FeatureOutline, 0, len(features))
	for _, f := range features {
		fo := FeatureOutline{Name: f.Name, Line: f.Position.Line}
		for _, s := range f.Scenarios {
			count := 0
			Walk(s.Statements, func(Statement) {
				count++
			})
			fo.Scenarios = append(fo.Scenarios, ScenarioOutline{
				Name:       s.Name,
				Tags:       s.Tags,
				Statements: count,
				Line:       s.Position.Line,
			})
		}
		out = append(out, fo)
	}
	return out
}
